package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// OrderStatus - статус заказа в таблице orders.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// ChangeEvent - одно изменение строки заказа, как его присылает вебхук базы данных.
// OldRecord равен nil для INSERT.
type ChangeEvent struct {
	Record    *OrderRecord `json:"record"`
	OldRecord *OrderRecord `json:"old_record"`
}

// OrderRecord содержит только те поля заказа, которые нужны для уведомлений.
type OrderRecord struct {
	ID         FlexString  `json:"id"`
	UserID     FlexString  `json:"user_id"`
	UserName   string      `json:"user_name"`
	Status     OrderStatus `json:"status"`
	TotalPrice json.Number `json:"total_price"`
}

// FlexString принимает как строку, так и число из JSON (id заказов бывают bigint и uuid).
type FlexString string

func (s *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = FlexString(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return fmt.Errorf("expected string or number, got %s", string(data))
	}
	*s = FlexString(num.String())
	return nil
}

func (s FlexString) String() string {
	return string(s)
}
