package pipeline

import (
	"order-notifier/internal/composer"
	"order-notifier/internal/models"
	"order-notifier/internal/recipient"
	"order-notifier/internal/trigger"
)

// Ответы обработчиков
const (
	MessageStaffNotified    = "Notifications sent successfully to all staff members"
	MessageNoNewOrder       = "No new order detected"
	MessageCustomerNotified = "Notification sent successfully"
	MessageNoNotification   = "No notification needed"
)

// Variant - конфигурация одного вида уведомления для общего пайплайна.
type Variant struct {
	Rule           trigger.Rule
	Audience       recipient.Audience
	Template       composer.Template
	SuccessMessage string
	NoopMessage    string
}

func (v Variant) Name() trigger.Variant {
	return v.Rule.Variant
}

var (
	// OrderCreated - новый заказ, рассылка всем сотрудникам.
	OrderCreated = Variant{
		Rule:           trigger.Created(),
		Audience:       recipient.AudienceStaff,
		Template:       composer.OrderCreated,
		SuccessMessage: MessageStaffNotified,
		NoopMessage:    MessageNoNewOrder,
	}
	// OrderCompleted - заказ готов, уведомление покупателю.
	OrderCompleted = Variant{
		Rule:           trigger.StatusTransition(trigger.VariantOrderCompleted, models.OrderStatusCompleted),
		Audience:       recipient.AudienceCustomer,
		Template:       composer.OrderCompleted,
		SuccessMessage: MessageCustomerNotified,
		NoopMessage:    MessageNoNotification,
	}
	// OrderCancelled - заказ отменен, уведомление покупателю.
	OrderCancelled = Variant{
		Rule:           trigger.StatusTransition(trigger.VariantOrderCancelled, models.OrderStatusCancelled),
		Audience:       recipient.AudienceCustomer,
		Template:       composer.OrderCancelled,
		SuccessMessage: MessageCustomerNotified,
		NoopMessage:    MessageNoNotification,
	}
)

// Variants returns every known variant.
func Variants() []Variant {
	return []Variant{OrderCreated, OrderCompleted, OrderCancelled}
}

// Lookup finds a variant by name.
func Lookup(name trigger.Variant) (Variant, bool) {
	for _, v := range Variants() {
		if v.Name() == name {
			return v, true
		}
	}
	return Variant{}, false
}
