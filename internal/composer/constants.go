package composer

// Ключи data payload
const (
	DataKeyOrderID     = "order_id"
	DataKeyClickAction = "click_action"
	DataKeyEventType   = "event_type"
)

// ClickAction открывает приложение по тапу на уведомление (Flutter).
const ClickAction = "FLUTTER_NOTIFICATION_CLICK"

// Event types used in the data payload
const (
	EventTypeOrderCreated   = "order_created"
	EventTypeOrderCompleted = "order_completed"
	EventTypeOrderCancelled = "order_cancelled"
)

// Плейсхолдеры шаблонов
const (
	PlaceholderUserName   = "{user_name}"
	PlaceholderTotalPrice = "{total_price}"
	PlaceholderOrderID    = "{order_id}"
)
