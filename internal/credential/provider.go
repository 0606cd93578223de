package credential

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"order-notifier/internal/models"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
)

// MessagingScope - OAuth scope, достаточный для FCM HTTP v1.
const MessagingScope = "https://www.googleapis.com/auth/firebase.messaging"

// JWTProvider обменивает ключ сервис-аккаунта на access token через подписанный JWT.
// Повторных попыток нет: ошибка обмена сразу возвращается вызывающему.
type JWTProvider struct {
	httpClient *http.Client
	scopes     []string
	tokenURL   string
	logger     *zap.Logger
}

// NewJWTProvider создает провайдер. tokenURL переопределяет token_uri из ключа (пусто - не переопределять).
func NewJWTProvider(httpClient *http.Client, tokenURL string, logger *zap.Logger) *JWTProvider {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &JWTProvider{
		httpClient: httpClient,
		scopes:     []string{MessagingScope},
		tokenURL:   tokenURL,
		logger:     logger.Named("jwt_token_provider"),
	}
}

// AccessToken performs one blocking exchange with the signing authority.
func (p *JWTProvider) AccessToken(ctx context.Context, cred models.ServiceCredential) (models.AccessToken, error) {
	log := p.logger.With(zap.String("client_email", cred.ClientEmail))

	tokenURL := cred.TokenURI
	if p.tokenURL != "" {
		tokenURL = p.tokenURL
	}
	if tokenURL == "" {
		tokenURL = google.JWTTokenURL
	}

	conf := &jwt.Config{
		Email:        cred.ClientEmail,
		PrivateKey:   []byte(cred.PrivateKey),
		PrivateKeyID: cred.PrivateKeyID,
		Scopes:       p.scopes,
		TokenURL:     tokenURL,
	}

	// oauth2 берет HTTP клиент (и его таймаут) из контекста
	exchangeCtx := context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)

	start := time.Now()
	tok, err := conf.TokenSource(exchangeCtx).Token()
	duration := time.Since(start)
	observeTokenExchange(duration, err)
	if err != nil {
		log.Error("Credential exchange failed", zap.Error(err), zap.Duration("duration", duration))
		return models.AccessToken{}, fmt.Errorf("%w: %v", models.ErrCredentialExchangeFailed, err)
	}
	if tok.AccessToken == "" {
		log.Error("Signing authority returned an empty access token")
		return models.AccessToken{}, fmt.Errorf("%w: empty access token", models.ErrCredentialExchangeFailed)
	}

	log.Debug("Access token obtained", zap.Duration("duration", duration), zap.Time("expiry", tok.Expiry))
	return models.AccessToken{Value: tok.AccessToken, Expiry: tok.Expiry}, nil
}
