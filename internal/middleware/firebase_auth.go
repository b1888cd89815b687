package middleware

import (
	"context"
	"encoding/base64"
	"encoding/json"

	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"
)

// InitFirebase initializes Firebase Admin SDK with environment variables
func InitFirebase(ctx context.Context, projectID, privateKeyB64, clientEmail string) (*firebase.App, error) {
	privateKey, err := base64.StdEncoding.DecodeString(privateKeyB64)
	if err != nil {
		return nil, err
	}

	credentialsJSON, err := json.Marshal(map[string]interface{}{
		"type":         "service_account",
		"project_id":   projectID,
		"private_key":  string(privateKey),
		"client_email": clientEmail,
		"token_uri":    "https://oauth2.googleapis.com/token",
	})
	if err != nil {
		return nil, err
	}

	return firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, option.WithCredentialsJSON(credentialsJSON))
}
