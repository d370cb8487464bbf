package identity

import (
	"context"
	"fmt"
	"log"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

type tokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// FirebaseVerifier validates Firebase ID tokens issued to the client apps.
type FirebaseVerifier struct {
	client tokenVerifier
}

// NewFirebaseVerifier uses the service account file when given and falls back
// to application default credentials otherwise.
func NewFirebaseVerifier(ctx context.Context, projectID, credentialsFile string) (*FirebaseVerifier, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("init firebase auth: %w", err)
	}

	log.Printf("✅ Firebase auth initialized for project %s", projectID)
	return &FirebaseVerifier{client: client}, nil
}

func (f *FirebaseVerifier) Verify(ctx context.Context, idToken string) (*Identity, error) {
	if idToken == "" {
		return nil, ErrInvalidCredential
	}

	token, err := f.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredential, err)
	}

	id := &Identity{Provider: "firebase", Subject: token.UID}
	id.Email, _ = token.Claims["email"].(string)
	id.EmailVerified, _ = token.Claims["email_verified"].(bool)
	id.Name, _ = token.Claims["name"].(string)
	id.Picture, _ = token.Claims["picture"].(string)

	if id.Email == "" {
		return nil, fmt.Errorf("%w: token has no email", ErrInvalidCredential)
	}
	return id, nil
}
