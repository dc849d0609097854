package backend

import (
	"context"
	"fmt"

	"hearth/internal/events"
	"hearth/internal/log"
	"hearth/internal/store/firestore"
	"hearth/internal/store/memory"
	"hearth/internal/store/sqlite"
)

// DefaultFactory implements the Factory interface.
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory.
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.Default(log.ComponentApp)
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
	}
}

// CreateBackend implements Factory.CreateBackend.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case MemoryBackend:
		return f.createMemoryBackend()
	case SQLiteBackend:
		return f.createSQLiteBackend(ctx, config)
	case FirestoreBackend:
		return f.createFirestoreBackend(ctx)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createMemoryBackend() (*Result, error) {
	f.logger.Info("Initialized memory backend")
	return &Result{
		Store:   memory.New(),
		Cleanup: nil,
	}, nil
}

func (f *DefaultFactory) createSQLiteBackend(ctx context.Context, config Config) (*Result, error) {
	// The change feed is optional. Without it a single process still gets
	// live subscriptions; with it, the app and the chore roller sharing one
	// database see each other's writes.
	var eventsClient *events.Client
	if config.AMQPURL != "" {
		var err error
		eventsClient, err = events.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.Warn("Failed to initialize change feed, continuing without it",
				log.FieldError, err)
			eventsClient = nil
		} else {
			f.logger.Info("Initialized change feed",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
		}
	}

	var publisher sqlite.ChangePublisher
	if eventsClient != nil {
		publisher = eventsClient
	}
	s, err := sqlite.New(config.SQLiteDBPath, publisher)
	if err != nil {
		if eventsClient != nil {
			eventsClient.Close()
		}
		return nil, fmt.Errorf("initialize sqlite store: %w", err)
	}

	var stopConsumer context.CancelFunc
	if eventsClient != nil {
		var consumerCtx context.Context
		consumerCtx, stopConsumer = context.WithCancel(context.Background())
		go func() {
			err := eventsClient.ConsumeChanges(consumerCtx, func(msg *events.ChangeMessage) error {
				return s.Refresh(consumerCtx, msg.Collection)
			})
			if err != nil && consumerCtx.Err() == nil {
				f.logger.Error("Change feed consumer stopped", log.FieldError, err)
			}
		}()
	}

	f.logger.Info("Initialized sqlite backend",
		"db_path", config.SQLiteDBPath,
		"change_feed", eventsClient != nil)

	return &Result{
		Store: s,
		Cleanup: func() error {
			if stopConsumer != nil {
				stopConsumer()
			}
			if eventsClient != nil {
				eventsClient.Close()
			}
			return s.Close()
		},
	}, nil
}

func (f *DefaultFactory) createFirestoreBackend(ctx context.Context) (*Result, error) {
	client, err := firestore.NewFromEnv(ctx)
	if err != nil {
		return nil, fmt.Errorf("initialize firestore client: %w", err)
	}

	f.logger.Info("Initialized firestore backend")

	return &Result{
		Store:   client,
		Cleanup: client.Close,
	}, nil
}
