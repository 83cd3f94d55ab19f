package deps

import (
	"context"
	"fmt"
	"medbot/internal/config"
	"medbot/internal/core/domain/bot"
	"medbot/internal/core/domain/localtime"
	dl "medbot/internal/core/domain/logging"
	drl "medbot/internal/core/domain/rate_limiter"
	"medbot/internal/core/domain/reminder"
	"medbot/internal/core/domain/textgen"
	"medbot/internal/core/domain/user"
	"medbot/internal/db"
	dbreminder "medbot/internal/db/reminder"
	dbuser "medbot/internal/db/user"
	eventpublisher "medbot/internal/implementations/event_publisher"
	"medbot/internal/implementations/logging"
	ratelimiter "medbot/internal/implementations/rate_limiter"
	reminderdispatcher "medbot/internal/implementations/reminder_dispatcher"
	telegrambotmessagesender "medbot/internal/implementations/telegram_bot_message_sender"
	textgenerator "medbot/internal/implementations/text_generator"
	timezoneresolver "medbot/internal/implementations/timezone_resolver"
	"medbot/internal/rabbitmq"
	"medbot/internal/rabbitmq/publishers/acknowledgement"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/v9"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/r3labs/sse/v2"
)

type Deps struct {
	Config *config.Config
	Logger dl.Logger

	DB        *pgxpool.Pool
	Redis     *redis.Client
	Rabbitmq  *rabbitmq.Connection
	SseServer *sse.Server

	Now func() time.Time

	UserRepository     user.UserRepository
	ReminderRepository reminder.ReminderRepository

	RateLimiter      drl.RateLimiter
	TimezoneResolver localtime.Resolver

	TelegramBotMessageSender *telegrambotmessagesender.TelegramBotMessageSender
	BotMessageSender         bot.MessageSender

	ReminderDispatcher       reminder.Dispatcher
	EventPublisher           reminder.EventPublisher
	AcknowledgementPublisher reminder.AcknowledgementPublisher
	TextGenerator            textgen.Generator
}

func InitDeps() (*Deps, func()) {
	deps := &Deps{}

	deps.initConfig()

	closeLogger := deps.initLogger()
	flushSentry := deps.initSentry()
	deps.applyMigrations()
	closePgxPool := deps.initPgxPool()
	closeRedisClient := deps.initRedisClient()
	closeRabbitmqConn := deps.initRabbitmqConnection()
	closeSseServer := deps.initSseServer()

	deps.Now = func() time.Time { return time.Now().UTC() }

	deps.UserRepository = dbuser.NewPgxRepository(deps.DB)
	deps.ReminderRepository = dbreminder.NewPgxReminderRepository(deps.DB, deps.Logger)

	deps.RateLimiter = ratelimiter.NewRedis(deps.Redis, deps.Logger, deps.Now)
	deps.TimezoneResolver = timezoneresolver.NewIANA(deps.Now)

	deps.TelegramBotMessageSender = telegrambotmessagesender.New(
		deps.Config.TelegramBaseURL,
		deps.Config.TelegramBotToken,
		deps.Config.TelegramRequestTimeout,
		deps.Config.TelegramMessagesPerSecond,
	)
	deps.BotMessageSender = deps.TelegramBotMessageSender

	deps.ReminderDispatcher = reminderdispatcher.NewTelegram(deps.BotMessageSender)
	deps.EventPublisher = eventpublisher.NewSSE(deps.SseServer, deps.Now)
	deps.TextGenerator = deps.initTextGenerator()

	closeAcknowledgementPublisher := deps.initAcknowledgementPublisher()

	return deps, func() {
		closeFuncs := []func(){
			closeSseServer,
			closeAcknowledgementPublisher,
			closeRabbitmqConn,
			closeRedisClient,
			closePgxPool,
		}

		var wg sync.WaitGroup
		wg.Add(len(closeFuncs))
		for _, closeFunc := range closeFuncs {
			closeFunc := closeFunc
			go func() {
				closeFunc()
				wg.Done()
			}()
		}
		wg.Wait()

		flushSentry()
		closeLogger()
	}
}

func (deps *Deps) initConfig() {
	config, err := config.Load()
	if err != nil {
		panic(err)
	}
	deps.Config = config
}

func (deps *Deps) initLogger() func() {
	logger, err := logging.NewZapLogger(logging.Config{
		Level:        deps.Config.LogLevel,
		File:         deps.Config.LogFile,
		ReportErrors: deps.Config.SentryDSN != "",
	})
	if err != nil {
		panic(fmt.Sprintf("could not init logger: %v", err))
	}
	deps.Logger = logger
	return func() { logger.Sync() }
}

func (deps *Deps) applyMigrations() {
	if err := db.ApplyMigrations(deps.Config.MigrationsPath, deps.Config.PostgresqlURL); err != nil {
		deps.Logger.Error(context.Background(), "Could not apply DB migrations.", dl.Entry("err", err))
		panic(err)
	}
	deps.Logger.Info(context.Background(), "DB migrations applied.")
}

func (deps *Deps) initPgxPool() func() {
	db, err := pgxpool.Connect(context.Background(), deps.Config.PostgresqlURL)
	if err != nil {
		deps.Logger.Error(context.Background(), "Could not connect to DB.", dl.Entry("err", err))
		panic(err)
	}
	deps.DB = db
	return func() {
		deps.Logger.Info(context.Background(), "Shutting down DB connection.")
		db.Close()
		deps.Logger.Info(context.Background(), "DB connection shut down.")
	}
}

func (deps *Deps) initRedisClient() func() {
	redisOpt, err := redis.ParseURL(deps.Config.RedisURL)
	if err != nil {
		deps.Logger.Error(context.Background(), "Could not connect to Redis.", dl.Entry("err", err))
		panic(err)
	}
	redisClient := redis.NewClient(redisOpt)
	deps.Redis = redisClient
	return func() {
		deps.Logger.Info(context.Background(), "Shutting down Redis client.")
		redisClient.Close()
		deps.Logger.Info(context.Background(), "Redis client shut down.")
	}
}

func (deps *Deps) initRabbitmqConnection() func() {
	rabbitmqConnection, err := rabbitmq.Dial(deps.Config.RabbitmqURL, deps.Logger)
	if err != nil {
		deps.Logger.Error(context.Background(), "Could not connect to RabbitMQ.", dl.Entry("err", err))
		panic("could not connect to RabbitMQ")
	}
	deps.Rabbitmq = rabbitmqConnection
	return func() {
		deps.Logger.Info(context.Background(), "Shutting down RabbitMQ connection.")
		rabbitmqConnection.Close()
		deps.Logger.Info(context.Background(), "RabbitMQ connection shut down.")
	}
}

func (deps *Deps) initAcknowledgementPublisher() func() {
	rabbitmqChannel, err := deps.Rabbitmq.Channel()
	if err != nil {
		deps.Logger.Error(context.Background(), "Could not create RabbitMQ channel.", dl.Entry("err", err))
		panic(err)
	}
	queue := deps.Config.RabbitmqAcknowledgementQueue
	if err := rabbitmqChannel.DeclareQueue(queue); err != nil {
		deps.Logger.Error(
			context.Background(),
			"Could not create RabbitMQ queue.",
			dl.Entry("err", err),
			dl.Entry("queue", queue),
		)
		panic(err)
	}

	deps.AcknowledgementPublisher = acknowledgement.NewRabbitMQ(deps.Logger, rabbitmqChannel, queue)

	return func() {
		deps.Logger.Info(context.Background(), "Shutting down acknowledgement publisher.")
		rabbitmqChannel.Close()
		deps.Logger.Info(context.Background(), "Acknowledgement publisher shut down.")
	}
}

func (deps *Deps) initSseServer() func() {
	deps.SseServer = sse.New()
	deps.SseServer.AutoStream = false
	deps.SseServer.AutoReplay = false
	return func() {
		deps.Logger.Info(context.Background(), "Shutting down SSE server.")
		deps.SseServer.Close()
		deps.Logger.Info(context.Background(), "SSE server shut down.")
	}
}

func (deps *Deps) initTextGenerator() textgen.Generator {
	if !deps.Config.TextGenerationEnabled() {
		deps.Logger.Info(context.Background(), "Text generation is disabled.")
		return textgenerator.Disabled{}
	}
	return textgenerator.WithAllowList(
		deps.Config.TextGenerationAllowedUsers,
		textgenerator.NewAnthropic(deps.Config.AnthropicAPIKey, deps.Config.AnthropicModel),
	)
}

func (deps *Deps) initSentry() func() {
	if deps.Config.SentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:              deps.Config.SentryDSN,
			TracesSampleRate: 0.01,
		})
		if err != nil {
			panic(fmt.Sprintf("could not init Sentry: %v\n", err))
		}
		deps.Logger.Info(context.Background(), "Sentry has been successfully initialized.")
		return func() {
			ok := sentry.Flush(5 * time.Second)
			deps.Logger.Info(context.Background(), "Sentry events flushed.", dl.Entry("ok", ok))
		}
	}

	deps.Logger.Info(context.Background(), "Sentry is disabled.")
	return func() {}
}
