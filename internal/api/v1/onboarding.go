package v1

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/poietai/poietai/internal/github"
	"github.com/poietai/poietai/internal/gitutil"
	"github.com/poietai/poietai/internal/secrets"
)

// githubTokenSecret is the vault entry name for the source-control token.
const githubTokenSecret = "github_token"

type SaveTokenInput struct {
	Body struct {
		Token string `json:"token" minLength:"1" doc:"Personal access token"`
	}
}

type SaveTokenOutput struct {
	Body struct {
		Masked    string `json:"masked" doc:"Masked token for display"`
		Encrypted bool   `json:"encrypted" doc:"Whether the vault stored it encrypted"`
	}
}

type GetTokenOutput struct {
	Body struct {
		Masked    string `json:"masked,omitempty" doc:"Masked token, empty when none saved"`
		Encrypted bool   `json:"encrypted" doc:"Whether the vault stores secrets encrypted"`
	}
}

type VerifyTokenOutput struct {
	Body struct {
		Login string `json:"login" doc:"Account the token belongs to"`
		Name  string `json:"name,omitempty" doc:"Account display name"`
	}
}

type ScanFolderInput struct {
	Body struct {
		Path string `json:"path" minLength:"1" doc:"Local folder to scan"`
	}
}

type ScanFolderOutput struct {
	Body gitutil.ScanResult
}

func RegisterOnboardingRoutes(api huma.API, store DataStore, vault *secrets.Vault, verify TokenVerifier, scan FolderScanner) {
	huma.Register(api, huma.Operation{
		OperationID: "save-token",
		Method:      http.MethodPut,
		Path:        "/onboarding/token",
		Summary:     "Save the source-control token",
		Tags:        []string{"Onboarding"},
	}, func(ctx context.Context, input *SaveTokenInput) (*SaveTokenOutput, error) {
		if err := vault.Store(ctx, store.Secrets(), githubTokenSecret, input.Body.Token); err != nil {
			return nil, huma.Error500InternalServerError("failed to store token", err)
		}

		out := &SaveTokenOutput{}
		out.Body.Masked = github.MaskToken(input.Body.Token)
		out.Body.Encrypted = vault.Encrypted()
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-token",
		Method:      http.MethodGet,
		Path:        "/onboarding/token",
		Summary:     "Get the saved token, masked",
		Tags:        []string{"Onboarding"},
	}, func(ctx context.Context, _ *struct{}) (*GetTokenOutput, error) {
		out := &GetTokenOutput{}
		out.Body.Encrypted = vault.Encrypted()

		token, err := vault.Load(ctx, store.Secrets(), githubTokenSecret)
		if errors.Is(err, secrets.ErrSecretNotFound) {
			return out, nil
		}
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to load token", err)
		}

		out.Body.Masked = github.MaskToken(token)
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "verify-token",
		Method:      http.MethodPost,
		Path:        "/onboarding/token/verify",
		Summary:     "Verify the saved token against the provider",
		Tags:        []string{"Onboarding"},
	}, func(ctx context.Context, _ *struct{}) (*VerifyTokenOutput, error) {
		token, err := vault.Load(ctx, store.Secrets(), githubTokenSecret)
		if errors.Is(err, secrets.ErrSecretNotFound) {
			return nil, huma.Error404NotFound("no token saved")
		}
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to load token", err)
		}

		info, err := verify(ctx, token)
		if err != nil {
			return nil, huma.Error400BadRequest("token verification failed: " + err.Error())
		}

		out := &VerifyTokenOutput{}
		out.Body.Login = info.Login
		out.Body.Name = info.Name
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "scan-folder",
		Method:      http.MethodPost,
		Path:        "/onboarding/scan",
		Summary:     "Scan a local folder for git repositories",
		Tags:        []string{"Onboarding"},
	}, func(ctx context.Context, input *ScanFolderInput) (*ScanFolderOutput, error) {
		return &ScanFolderOutput{Body: scan(input.Body.Path)}, nil
	})
}
