package connection

import (
	"context"
	"fmt"
	"log/slog"

	"tenor/config"
	"tenor/services"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go"
	fbauth "firebase.google.com/go/auth"
	"google.golang.org/api/option"
)

// Firebase holds the clients every controller shares.
type Firebase struct {
	Firestore *firestore.Client
	Auth      *fbauth.Client
	Store     *services.FileStore
}

func (f *Firebase) Close() error {
	return f.Firestore.Close()
}

func FBConnection(ctx context.Context, cfg *config.Config) (*Firebase, error) {
	var fbConfig *firebase.Config
	if cfg.ProjectID != "" || cfg.StorageBucket != "" {
		fbConfig = &firebase.Config{ProjectID: cfg.ProjectID, StorageBucket: cfg.StorageBucket}
	}

	app, err := firebase.NewApp(ctx, fbConfig, option.WithCredentialsFile(cfg.CredentialsFile))
	if err != nil {
		return nil, fmt.Errorf("initialize firebase app: %w", err)
	}

	fs, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("get firestore client: %w", err)
	}
	ac, err := app.Auth(ctx)
	if err != nil {
		fs.Close()
		return nil, fmt.Errorf("get auth client: %w", err)
	}

	fb := &Firebase{Firestore: fs, Auth: ac}
	if cfg.StorageBucket == "" {
		slog.Warn("FIREBASE_STORAGE_BUCKET not set, uploads are disabled")
		return fb, nil
	}

	sc, err := app.Storage(ctx)
	if err != nil {
		fs.Close()
		return nil, fmt.Errorf("get storage client: %w", err)
	}
	bucket, err := sc.DefaultBucket()
	if err != nil {
		fs.Close()
		return nil, fmt.Errorf("open storage bucket: %w", err)
	}
	fb.Store = services.NewFileStore(bucket, cfg.StorageBucket)

	slog.Info("Firestore connection successful", "project", cfg.ProjectID)
	return fb, nil
}
