package bootstrap

import (
	"docintel-be/internal/config"
	"docintel-be/internal/controller"
	"docintel-be/internal/pkg/logger"
	"docintel-be/internal/pkg/serverutils"
	"docintel-be/internal/repository/memory"
	"docintel-be/internal/repository/unitofwork"
	"docintel-be/internal/service"
	"docintel-be/pkg/chunker"
	"docintel-be/pkg/extract"
	pktNats "docintel-be/pkg/nats"
	"docintel-be/pkg/rag/index"
	"docintel-be/pkg/rag/search"
	"docintel-be/pkg/storage"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	RagController      controller.IRagController
	DocumentController controller.IDocumentController

	// Retrieval core, for callers that skip HTTP
	Retriever search.Retriever

	// Background Services (Exposed for main.go to run)
	HistoryConsumerService   service.IHistoryConsumerService
	IndexInvalidationService service.IIndexInvalidationService // nil unless cache and NATS are on

	Logger logger.ILogger

	pubSub  *gochannel.GoChannel
	natsPub *pktNats.Publisher
	natsSub *pktNats.Subscriber
}

type ContainerOption func(*containerOptions)

type containerOptions struct {
	logger logger.ILogger
}

// WithLogger replaces the default file+stdout logger. Processes whose stdout
// carries data, such as the CLI, pass a stderr logger here.
func WithLogger(l logger.ILogger) ContainerOption {
	return func(o *containerOptions) { o.logger = l }
}

func NewContainer(db *gorm.DB, cfg *config.Config, opts ...ContainerOption) (*Container, error) {
	var o containerOptions
	for _, opt := range opts {
		opt(&o)
	}

	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := o.logger
	if sysLogger == nil {
		sysLogger = logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction(), cfg.App.LogLevel)
	}

	// 2. Event Bus
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 64},
		watermill.NewStdLogger(false, false),
	)

	// 3. Retrieval core
	embeddingProvider, err := NewEmbeddingProvider(cfg)
	if err != nil {
		return nil, err
	}
	sysLogger.Info("BOOTSTRAP", "Embedding provider selected", map[string]interface{}{
		"provider": cfg.Ai.EmbeddingProvider,
		"rps":      cfg.Ai.RequestsPerSecond,
	})

	builder := index.NewBuilder(
		service.NewDocumentSource(uowFactory),
		extract.New(storage.NewLocalFileStore(cfg.App.UploadsDir)),
		chunker.New(chunker.WithChunkSize(cfg.Rag.ChunkSize), chunker.WithOverlap(cfg.Rag.ChunkOverlap)),
		embeddingProvider,
		index.WithWorkers(cfg.Rag.ExtractionWorkers),
		index.WithEmbedTimeout(cfg.Ai.EmbeddingTimeout),
		index.WithLogger(sysLogger),
	)

	orchestratorOpts := []search.Option{
		search.WithLogger(sysLogger),
		search.WithTopK(cfg.Rag.DefaultTopK, cfg.Rag.MaxTopK),
	}
	var indexCache *memory.IndexCache
	if cfg.Rag.IndexCacheTTL > 0 {
		indexCache = memory.NewIndexCache(cfg.Rag.IndexCacheTTL)
		orchestratorOpts = append(orchestratorOpts, search.WithCache(indexCache))
	}
	orchestrator := search.NewOrchestrator(builder, embeddingProvider, orchestratorOpts...)

	// 4. Infrastructure
	c := &Container{
		Retriever: orchestrator,
		Logger:    sysLogger,
		pubSub:    pubSub,
	}

	var eventPublisher service.EventPublisher
	if cfg.App.NatsEnabled {
		natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			sysLogger.Warn("BOOTSTRAP", "Failed to connect NATS publisher", map[string]interface{}{"error": err.Error()})
		} else {
			c.natsPub = natsPub
			eventPublisher = natsPub
		}

		if indexCache != nil {
			natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
			if err != nil {
				sysLogger.Warn("BOOTSTRAP", "Failed to connect NATS subscriber", map[string]interface{}{"error": err.Error()})
			} else {
				c.natsSub = natsSub
				c.IndexInvalidationService = service.NewIndexInvalidationService(natsSub, indexCache, sysLogger)
			}
		}
	}

	// 5. Services
	publisherService := service.NewPublisherService(cfg.Rag.HistoryTopic, pubSub)
	retrievalService := service.NewRetrievalService(orchestrator, publisherService, sysLogger)
	historyService := service.NewHistoryService(uowFactory, cfg.Rag.HistoryLimit)
	documentService := service.NewDocumentService(uowFactory, eventPublisher, sysLogger)

	c.HistoryConsumerService = service.NewHistoryConsumerService(pubSub, cfg.Rag.HistoryTopic, uowFactory, sysLogger)

	// 6. Controllers
	authMiddleware := serverutils.NewJwtMiddleware(cfg.Keys.JwtSecret)
	c.RagController = controller.NewRagController(retrievalService, historyService, authMiddleware)
	c.DocumentController = controller.NewDocumentController(documentService, authMiddleware)

	return c, nil
}

// Close releases the buses and flushes the logger.
func (c *Container) Close() {
	if c.natsSub != nil {
		c.natsSub.Close()
	}
	if c.natsPub != nil {
		c.natsPub.Close()
	}
	if c.pubSub != nil {
		_ = c.pubSub.Close()
	}
	if c.Logger != nil {
		_ = c.Logger.Sync()
	}
}
