package conversation

import (
	"fmt"
	"time"

	"github.com/joao-fontenele/pickup-orderbot/internal/domain"
)

// Templates renders customer-facing replies. All clock labels are rendered in
// the shop's location.
type Templates struct {
	ShopName string
	BotName  string
	Location *time.Location
}

func (t Templates) Greeting(name string) string {
	if name != "" {
		name = " " + name
	}
	return fmt.Sprintf("👋 ¡Hola%s! Soy *%s* 🥩\nEstoy listo para tomar tu pedido. Escríbeme por ejemplo: \"4 kg de caderita\".",
		name, t.BotName)
}

func (t Templates) PendingReminder(order domain.Order) string {
	return fmt.Sprintf("📌 Ya tenemos un pedido pendiente con nosotros:\n• %s\n⏰ Franja sugerida: %s - %s.\nSi necesitás modificarlo avisame y te ayudo.",
		order.OrderText,
		order.PickupWindow.StartLabel(t.Location),
		order.PickupWindow.EndLabel(t.Location),
	)
}

func (t Templates) OrderCreated(order domain.Order, now time.Time) string {
	return fmt.Sprintf("🥩 ¡Genial! Registré tu pedido de *%s*.\n🕒 Lo recibimos a las %s.\n📍 Podés retirarlo %s entre *%s y %s*.\n¿A qué hora dentro de esa franja te gustaría venir?",
		order.OrderText,
		domain.ClockLabel(order.RequestedAt, t.Location),
		order.PickupWindow.DayLabel(now, t.Location),
		order.PickupWindow.StartLabel(t.Location),
		order.PickupWindow.EndLabel(t.Location),
	)
}

func (t Templates) AskForTime() string {
	return "⏰ Contame la hora a la que querés pasar, por ejemplo *13:30*."
}

func (t Templates) NoOrderYet() string {
	return "📦 Todavía no tengo un pedido registrado. Decime por ejemplo: *4 kg de caderita*."
}

func (t Templates) PickupConfirmed(order domain.Order) string {
	label := ""
	if order.ConfirmedPickupAt != nil {
		label = domain.ClockLabel(*order.ConfirmedPickupAt, t.Location)
	}
	return fmt.Sprintf("✅ Perfecto, agendamos tu retiro para las *%s*.\n¡Gracias por elegir *%s*! 🥩", label, t.ShopName)
}

func (t Templates) TimeOutOfRange(order domain.Order) string {
	return fmt.Sprintf("⚠️ Ese horario está fuera de la franja propuesta (%s - %s).\nPor favor elegí un horario dentro de ese rango.",
		order.PickupWindow.StartLabel(t.Location),
		order.PickupWindow.EndLabel(t.Location),
	)
}

func (t Templates) Help() string {
	return "🤖 No pude entender tu mensaje. Podés decirme algo como: \n• *4 kg de caderita*\n• *Hola*\n• *13:30* (para confirmar la hora de retiro)."
}

func (t Templates) Apology() string {
	return "😓 Tuvimos un inconveniente interno. Intentá nuevamente en unos minutos, por favor."
}
