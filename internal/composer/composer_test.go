package composer_test

import (
	"encoding/json"
	"testing"

	"order-notifier/internal/composer"
	"order-notifier/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func order(id, user, name, price string) models.OrderRecord {
	return models.OrderRecord{
		ID:         models.FlexString(id),
		UserID:     models.FlexString(user),
		UserName:   name,
		TotalPrice: json.Number(price),
	}
}

func TestCompose(t *testing.T) {
	t.Run("Order created for every staff token", func(t *testing.T) {
		recipients := []models.Recipient{
			{UserID: "s1", DeviceToken: "t1"},
			{UserID: "s2", DeviceToken: "t2"},
		}

		msgs, err := composer.Compose(composer.OrderCreated, recipients, order("o1", "u1", "Asha", "250"))

		require.NoError(t, err)
		require.Len(t, msgs, 2)
		assert.Equal(t, "t1", msgs[0].TargetToken)
		assert.Equal(t, "t2", msgs[1].TargetToken)
		for _, m := range msgs {
			assert.Equal(t, "New Order Received! 📦", m.Title)
			assert.Equal(t, "Order from: Asha, Amount: Rs.250", m.Body)
			assert.Equal(t, map[string]string{
				"order_id":     "o1",
				"click_action": "FLUTTER_NOTIFICATION_CLICK",
				"event_type":   "order_created",
			}, m.Data)
		}
	})

	t.Run("Order completed", func(t *testing.T) {
		msgs, err := composer.Compose(composer.OrderCompleted,
			[]models.Recipient{{UserID: "u1", DeviceToken: "tok"}}, order("o1", "u1", "", "250"))

		require.NoError(t, err)
		require.Len(t, msgs, 1)
		assert.Equal(t, "Order Completed! 🎉", msgs[0].Title)
		assert.Equal(t, "Your order of Rs.250 is ready for pickup!", msgs[0].Body)
		assert.Equal(t, "o1", msgs[0].Data["order_id"])
		assert.Equal(t, "order_completed", msgs[0].Data["event_type"])
	})

	t.Run("Order cancelled keeps the price text as sent", func(t *testing.T) {
		msgs, err := composer.Compose(composer.OrderCancelled,
			[]models.Recipient{{UserID: "u1", DeviceToken: "tok"}}, order("42", "u1", "", "99.50"))

		require.NoError(t, err)
		require.Len(t, msgs, 1)
		assert.Equal(t, "Order Canceled 😞", msgs[0].Title)
		assert.Equal(t, "Your order of Rs.99.50 has been canceled. We hope to serve you again soon!", msgs[0].Body)
	})

	t.Run("Recipients without token are skipped", func(t *testing.T) {
		msgs, err := composer.Compose(composer.OrderCreated, []models.Recipient{
			{UserID: "s1", DeviceToken: ""},
			{UserID: "s2", DeviceToken: "t2"},
		}, order("o1", "u1", "Asha", "250"))

		require.NoError(t, err)
		require.Len(t, msgs, 1)
		assert.Equal(t, "t2", msgs[0].TargetToken)
	})

	t.Run("Missing required fields", func(t *testing.T) {
		cases := []struct {
			name  string
			tpl   composer.Template
			order models.OrderRecord
		}{
			{"no id", composer.OrderCompleted, order("", "u1", "", "250")},
			{"no price", composer.OrderCancelled, order("o1", "u1", "", "")},
			{"no user name for created", composer.OrderCreated, order("o1", "u1", "  ", "250")},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				msgs, err := composer.Compose(tc.tpl, []models.Recipient{{UserID: "u1", DeviceToken: "tok"}}, tc.order)
				assert.ErrorIs(t, err, models.ErrInvalidRecord)
				assert.Nil(t, msgs)
			})
		}
	})

	t.Run("User name is optional for customer templates", func(t *testing.T) {
		assert.NoError(t, composer.OrderCompleted.Validate(order("o1", "u1", "", "250")))
	})
}
