package dispatch

import (
	"order-notifier/internal/models"
)

// Aggregate сводит результаты отправок в одну ошибку (или nil).
// Для одиночной отправки ошибка несет статус и тело ответа провайдера,
// для рассылки - число и токены неуспешных отправок.
func Aggregate(results []models.DispatchResult, broadcast bool) error {
	if !broadcast {
		for _, r := range results {
			if !r.OK {
				return &models.SendFailedError{Status: r.Status, Body: r.Body}
			}
		}
		return nil
	}

	var failed []string
	for _, r := range results {
		if !r.OK {
			failed = append(failed, r.Token)
		}
	}
	if len(failed) == 0 {
		return nil
	}
	return &models.PartialSendFailureError{
		Failed:       len(failed),
		Total:        len(results),
		FailedTokens: failed,
	}
}

// UnregisteredTokens возвращает токены, которые провайдер признал недействительными.
func UnregisteredTokens(results []models.DispatchResult) []string {
	var tokens []string
	for _, r := range results {
		if r.Unregistered {
			tokens = append(tokens, r.Token)
		}
	}
	return tokens
}
