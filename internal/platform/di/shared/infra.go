package shared

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	firebaseauth "firebase.google.com/go/v4/auth"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	appcfg "firstpick/internal/infra/config"
	"firstpick/internal/infra/database"
	firestoreinfra "firstpick/internal/infra/firestore"
	"firstpick/internal/infra/secrets"
)

// Infra is the shared runtime infrastructure. It owns every external client
// and closes them in Close.
//
// Firestore, GCS and Firebase Auth are required. Redis and Postgres are only
// opened when configured.
type Infra struct {
	Config *appcfg.Config
	Log    *zap.Logger

	Firestore    *firestoreinfra.ClientWrapper
	GCS          *storage.Client
	FirebaseAuth *firebaseauth.Client
	Secrets      *secrets.SecretManager
	Redis        *redis.Client
	Postgres     *database.DB
}

func NewInfra(ctx context.Context, cfg *appcfg.Config, log *zap.Logger) (*Infra, error) {
	if cfg == nil {
		return nil, errors.New("shared.infra: config is nil")
	}
	if log == nil {
		log = zap.NewNop()
	}
	inf := &Infra{Config: cfg, Log: log}

	credFile := strings.TrimSpace(cfg.FirestoreCredentialsFile)
	if credFile == "" {
		credFile = strings.TrimSpace(cfg.GCPCreds)
	}
	var clientOpts []option.ClientOption
	if credFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(credFile))
		log.Info("using credentials file for GCP clients")
	} else {
		log.Info("using application default credentials")
	}

	fs, err := firestoreinfra.NewClient(ctx, cfg.FirestoreProjectID, credFile, log)
	if err != nil {
		return nil, fmt.Errorf("shared.infra: %w", err)
	}
	inf.Firestore = fs

	if inf.GCS, err = storage.NewClient(ctx, clientOpts...); err != nil {
		_ = inf.Close()
		return nil, fmt.Errorf("shared.infra: storage.NewClient failed: %w", err)
	}
	if strings.TrimSpace(cfg.GCSBucket) == "" {
		log.Warn("GCS_BUCKET is empty; product image uploads will fail")
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.FirebaseProjectID}, clientOpts...)
	if err != nil {
		_ = inf.Close()
		return nil, fmt.Errorf("shared.infra: firebase app init failed: %w", err)
	}
	if inf.FirebaseAuth, err = app.Auth(ctx); err != nil {
		_ = inf.Close()
		return nil, fmt.Errorf("shared.infra: firebase auth init failed: %w", err)
	}

	if cfg.RedisAddr != "" {
		if err := inf.openRedis(ctx, clientOpts); err != nil {
			// the catalog works without its cache
			log.Warn("catalog cache disabled", zap.Error(err))
		}
	}

	if cfg.OrderStore == appcfg.OrderStorePostgres {
		if inf.Postgres, err = database.NewConnection(ctx, cfg.DatabaseURL, log); err != nil {
			_ = inf.Close()
			return nil, fmt.Errorf("shared.infra: %w", err)
		}
		if err := database.RunMigrations(inf.Postgres.Client, log); err != nil {
			_ = inf.Close()
			return nil, fmt.Errorf("shared.infra: %w", err)
		}
	}

	return inf, nil
}

func (i *Infra) openRedis(ctx context.Context, clientOpts []option.ClientOption) error {
	password := i.Config.RedisPassword
	if secretID := strings.TrimSpace(i.Config.RedisPasswordSecret); secretID != "" {
		sm, err := secrets.NewSecretManager(ctx, i.Config.GCPProjectID, clientOpts...)
		if err != nil {
			return err
		}
		i.Secrets = sm
		if password, err = sm.Access(ctx, secretID); err != nil {
			return err
		}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     i.Config.RedisAddr,
		Password: password,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return fmt.Errorf("redis ping %s: %w", i.Config.RedisAddr, err)
	}
	i.Redis = client
	i.Log.Info("redis connected", zap.String("addr", i.Config.RedisAddr))
	return nil
}

// Ping checks the backends requests depend on.
func (i *Infra) Ping(ctx context.Context) error {
	if err := i.Firestore.Ping(ctx); err != nil {
		return err
	}
	if i.Postgres != nil {
		if err := i.Postgres.Client.PingContext(ctx); err != nil {
			return fmt.Errorf("postgres ping failed: %w", err)
		}
	}
	return nil
}

func (i *Infra) Close() error {
	if i == nil {
		return nil
	}
	var errs []error
	if i.Postgres != nil {
		errs = append(errs, i.Postgres.Close())
	}
	if i.Redis != nil {
		errs = append(errs, i.Redis.Close())
	}
	if i.Secrets != nil {
		errs = append(errs, i.Secrets.Close())
	}
	if i.GCS != nil {
		errs = append(errs, i.GCS.Close())
	}
	errs = append(errs, i.Firestore.Close())
	return errors.Join(errs...)
}
