package models

import "time"

// Recipient - получатель push-уведомления с непустым токеном устройства.
type Recipient struct {
	UserID      string `json:"user_id"`
	DeviceToken string `json:"device_token"`
}

// UserToken - строка хранилища пользователей с сохраненным FCM токеном.
type UserToken struct {
	UserID   string `db:"id"`
	FCMToken string `db:"fcm_token"`
}

// ServiceCredential - содержимое файла ключа сервис-аккаунта Firebase.
type ServiceCredential struct {
	ClientEmail  string `json:"client_email"`
	PrivateKey   string `json:"private_key"`
	PrivateKeyID string `json:"private_key_id,omitempty"`
	ProjectID    string `json:"project_id"`
	TokenURI     string `json:"token_uri,omitempty"`
}

// AccessToken - короткоживущий bearer токен для FCM.
type AccessToken struct {
	Value  string    `json:"access_token"`
	Expiry time.Time `json:"expiry"`
}

// Valid reports whether the token is non-empty and will not expire within skew.
func (t AccessToken) Valid(now time.Time, skew time.Duration) bool {
	if t.Value == "" {
		return false
	}
	if t.Expiry.IsZero() {
		return true
	}
	return now.Add(skew).Before(t.Expiry)
}

// DispatchAuth - все, что нужно отправителю для одного вызова FCM.
type DispatchAuth struct {
	ProjectID   string
	AccessToken AccessToken
}

// NotificationMessage - одно сообщение одному получателю.
type NotificationMessage struct {
	TargetToken string            `json:"token"`
	Title       string            `json:"title"`
	Body        string            `json:"body"`
	Data        map[string]string `json:"data,omitempty"`
}

// DispatchResult - результат одной отправки.
type DispatchResult struct {
	Token        string `json:"-"`
	OK           bool   `json:"ok"`
	Status       int    `json:"status"`
	Body         string `json:"body,omitempty"`
	Unregistered bool   `json:"-"`
}
