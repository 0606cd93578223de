package composer

import (
	"fmt"
	"strings"

	"order-notifier/internal/models"
)

// Field - поле заказа, без которого шаблон нельзя отрендерить.
type Field string

const (
	FieldID         Field = "id"
	FieldUserName   Field = "user_name"
	FieldTotalPrice Field = "total_price"
)

// Template описывает одно уведомление: заголовок, тело с плейсхолдерами и обязательные поля.
type Template struct {
	EventType string
	Title     string
	Body      string
	Required  []Field
}

// OrderCreated - уведомление персоналу о новом заказе.
var OrderCreated = Template{
	EventType: EventTypeOrderCreated,
	Title:     "New Order Received! 📦",
	Body:      "Order from: " + PlaceholderUserName + ", Amount: Rs." + PlaceholderTotalPrice,
	Required:  []Field{FieldID, FieldUserName, FieldTotalPrice},
}

// OrderCompleted - уведомление покупателю о готовом заказе.
var OrderCompleted = Template{
	EventType: EventTypeOrderCompleted,
	Title:     "Order Completed! 🎉",
	Body:      "Your order of Rs." + PlaceholderTotalPrice + " is ready for pickup!",
	Required:  []Field{FieldID, FieldTotalPrice},
}

// OrderCancelled - уведомление покупателю об отмене заказа.
var OrderCancelled = Template{
	EventType: EventTypeOrderCancelled,
	Title:     "Order Canceled 😞",
	Body:      "Your order of Rs." + PlaceholderTotalPrice + " has been canceled. We hope to serve you again soon!",
	Required:  []Field{FieldID, FieldTotalPrice},
}

func fieldValue(order models.OrderRecord, f Field) string {
	switch f {
	case FieldID:
		return string(order.ID)
	case FieldUserName:
		return order.UserName
	case FieldTotalPrice:
		return order.TotalPrice.String()
	}
	return ""
}

// Validate проверяет, что у заказа есть все поля, нужные шаблону.
func (t Template) Validate(order models.OrderRecord) error {
	var missing []string
	for _, f := range t.Required {
		if strings.TrimSpace(fieldValue(order, f)) == "" {
			missing = append(missing, string(f))
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", models.ErrInvalidRecord, strings.Join(missing, ", "))
	}
	return nil
}

// Render подставляет значения заказа в тело шаблона.
func (t Template) Render(order models.OrderRecord) string {
	r := strings.NewReplacer(
		PlaceholderUserName, order.UserName,
		PlaceholderTotalPrice, order.TotalPrice.String(),
		PlaceholderOrderID, string(order.ID),
	)
	return r.Replace(t.Body)
}

// Compose builds one message per recipient with a device token.
// Recipients without a token never get a message.
func Compose(tpl Template, recipients []models.Recipient, order models.OrderRecord) ([]models.NotificationMessage, error) {
	if err := tpl.Validate(order); err != nil {
		return nil, err
	}

	body := tpl.Render(order)
	msgs := make([]models.NotificationMessage, 0, len(recipients))
	for _, r := range recipients {
		if r.DeviceToken == "" {
			continue
		}
		msgs = append(msgs, models.NotificationMessage{
			TargetToken: r.DeviceToken,
			Title:       tpl.Title,
			Body:        body,
			Data: map[string]string{
				DataKeyOrderID:     string(order.ID),
				DataKeyClickAction: ClickAction,
				DataKeyEventType:   tpl.EventType,
			},
		})
	}
	return msgs, nil
}
