package shared

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"cloud.google.com/go/firestore"
	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	secretmanagerpb "cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"cloud.google.com/go/storage"

	firebase "firebase.google.com/go/v4"
	firebaseauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	appcfg "boutique/internal/infra/config"
	firestoreinfra "boutique/internal/infra/firestore"
)

// Infra is shared runtime infrastructure for DI.
// - owns external clients (Firestore/FirebaseAuth/GCS/SecretManager)
// - owns env/config-resolved runtime settings (ERP key, bucket names)
//
// IMPORTANT:
// Infra must NOT depend on routers, handlers, or usecases.
type Infra struct {
	// Config
	Config    *appcfg.Config
	ProjectID string

	// Clients (owned; Close-managed)
	Firestore     *firestore.Client
	GCS           *storage.Client
	FirebaseApp   *firebase.App
	FirebaseAuth  *firebaseauth.Client
	SecretManager *secretmanager.Client

	// Runtime settings (resolved once)
	DolibarrBaseURL string
	DolibarrAPIKey  string
	PhotoBucket     string
}

// NewInfra initializes shared infra.
// The ERP base URL is strict (the whole catalog depends on it).
// Firestore is strict only for the default cart backend; GCS, Firebase/Auth
// and SecretManager are best-effort (warn + continue with the feature off).
func NewInfra(ctx context.Context) (*Infra, error) {
	cfg := appcfg.Load()
	if cfg == nil {
		return nil, errors.New("shared.infra: config is nil")
	}

	if strings.TrimSpace(cfg.DolibarrBaseURL) == "" {
		return nil, errors.New("shared.infra: DOLIBARR_BASE_URL is empty")
	}

	inf := &Infra{
		Config:          cfg,
		ProjectID:       resolveProjectID(cfg),
		DolibarrBaseURL: strings.TrimRight(strings.TrimSpace(cfg.DolibarrBaseURL), "/"),
		PhotoBucket:     strings.TrimSpace(cfg.PhotoBucket),
	}

	// Credentials file (optional; mainly for local dev)
	credFile := strings.TrimSpace(cfg.FirestoreCredentialsFile)
	if credFile == "" {
		credFile = strings.TrimSpace(cfg.GCPCreds) // GOOGLE_APPLICATION_CREDENTIALS
	}
	var clientOpts []option.ClientOption
	if credFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(credFile))
		log.Printf("[shared.infra] Using credentials file for GCP clients: %s", redactPath(credFile))
	} else {
		log.Printf("[shared.infra] Using Application Default Credentials (no credentials file configured)")
	}

	// 1) Optional: Secret Manager client (ERP API key resolution)
	{
		var sm *secretmanager.Client
		var err error
		if len(clientOpts) > 0 {
			sm, err = secretmanager.NewClient(ctx, clientOpts...)
		} else {
			sm, err = secretmanager.NewClient(ctx)
		}
		if err != nil {
			log.Printf("[shared.infra] WARN: secretmanager.NewClient failed: %v (falling back to DOLIBARR_API_KEY env)", err)
			sm = nil
		}
		inf.SecretManager = sm
	}

	// 2) ERP API key: Secret Manager wins over the env/file value
	inf.DolibarrAPIKey = inf.resolveDolibarrAPIKey(ctx)
	if inf.DolibarrAPIKey == "" {
		log.Printf("[shared.infra] WARN: ERP API key is empty (catalog requests will be rejected upstream)")
	}

	// 3) Firestore (strict when it backs the cart; wishlist shares the client)
	{
		strict := strings.EqualFold(strings.TrimSpace(cfg.CartBackend), "firestore")
		if inf.ProjectID == "" {
			if strict {
				return nil, errors.New("shared.infra: projectID is empty (set FIRESTORE_PROJECT_ID or GOOGLE_CLOUD_PROJECT)")
			}
			log.Printf("[shared.infra] WARN: projectID is empty, Firestore disabled")
		} else {
			fsw, err := firestoreinfra.NewClient(ctx, inf.ProjectID, credFile)
			if err != nil {
				if strict {
					return nil, fmt.Errorf("shared.infra: firestore init failed (project=%s): %w", inf.ProjectID, err)
				}
				log.Printf("[shared.infra] WARN: firestore init failed: %v (wishlist disabled)", err)
			} else {
				inf.Firestore = fsw.Client
			}
		}
	}

	// 4) GCS (best-effort; only the photo fallback needs it)
	if inf.PhotoBucket != "" {
		var gcsClient *storage.Client
		var err error
		if len(clientOpts) > 0 {
			gcsClient, err = storage.NewClient(ctx, clientOpts...)
		} else {
			gcsClient, err = storage.NewClient(ctx)
		}
		if err != nil {
			log.Printf("[shared.infra] WARN: storage.NewClient failed: %v (photo fallback disabled)", err)
		} else {
			inf.GCS = gcsClient
			log.Printf("[shared.infra] GCS storage client initialized bucket=%s", inf.PhotoBucket)
		}
	}

	// 5) Firebase App/Auth (best-effort; guests work without it)
	if inf.ProjectID != "" {
		var fbApp *firebase.App
		var err error

		fbCfg := &firebase.Config{ProjectID: inf.ProjectID}
		if len(clientOpts) > 0 {
			fbApp, err = firebase.NewApp(ctx, fbCfg, clientOpts...)
		} else {
			fbApp, err = firebase.NewApp(ctx, fbCfg)
		}

		if err != nil {
			log.Printf("[shared.infra] WARN: firebase app init failed: %v", err)
		} else {
			inf.FirebaseApp = fbApp
			authClient, err := fbApp.Auth(ctx)
			if err != nil {
				log.Printf("[shared.infra] WARN: firebase auth init failed: %v", err)
			} else {
				inf.FirebaseAuth = authClient
				log.Printf("[shared.infra] Firebase Auth initialized")
			}
		}
	}

	return inf, nil
}

// resolveDolibarrAPIKey prefers the Secret Manager secret named by
// DOLIBARR_API_KEY_SECRET; the plain env/file value is the fallback.
func (i *Infra) resolveDolibarrAPIKey(ctx context.Context) string {
	plain := strings.TrimSpace(i.Config.DolibarrAPIKey)

	secretID := strings.TrimSpace(i.Config.DolibarrAPIKeySecret)
	if secretID == "" || i.SecretManager == nil || i.ProjectID == "" {
		return plain
	}

	name := "projects/" + i.ProjectID + "/secrets/" + secretID + "/versions/latest"
	resp, err := i.SecretManager.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{Name: name})
	if err != nil {
		log.Printf("[shared.infra] WARN: AccessSecretVersion failed (%s): %v (falling back to DOLIBARR_API_KEY)", name, err)
		return plain
	}
	if resp == nil || resp.Payload == nil || len(resp.Payload.Data) == 0 {
		log.Printf("[shared.infra] WARN: empty secret payload (%s)", name)
		return plain
	}

	log.Printf("[shared.infra] ERP API key resolved from Secret Manager secret=%s", secretID)
	return strings.TrimSpace(string(resp.Payload.Data))
}

func (i *Infra) Close() error {
	if i == nil {
		return nil
	}
	if i.Firestore != nil {
		_ = i.Firestore.Close()
	}
	if i.GCS != nil {
		_ = i.GCS.Close()
	}
	if i.SecretManager != nil {
		_ = i.SecretManager.Close()
	}
	return nil
}

func resolveProjectID(cfg *appcfg.Config) string {
	// Priority:
	// 1) cfg.FirestoreProjectID (resolved by config.Load)
	// 2) FIRESTORE_PROJECT_ID
	// 3) GCP_PROJECT_ID
	// 4) GOOGLE_CLOUD_PROJECT (often set in Cloud Run)
	// 5) FIREBASE_PROJECT_ID (fallback)
	if cfg != nil {
		if v := strings.TrimSpace(cfg.FirestoreProjectID); v != "" {
			return v
		}
	}

	for _, k := range []string{
		"FIRESTORE_PROJECT_ID",
		"GCP_PROJECT_ID",
		"GOOGLE_CLOUD_PROJECT",
		"FIREBASE_PROJECT_ID",
	} {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			return v
		}
	}

	return ""
}

func redactPath(p string) string {
	// Do not log full path (Windows/Unix compatible light masking)
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	p = strings.ReplaceAll(p, "\\", "/")
	parts := strings.Split(p, "/")
	if len(parts) == 0 {
		return "***"
	}
	last := parts[len(parts)-1]
	if last == "" {
		return "***"
	}
	return "***" + "/" + last
}
