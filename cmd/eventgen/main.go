// Command eventgen is a synthetic write side for local testing: it seeds a
// handful of accounts and then publishes a random stream of deposit,
// withdrawal and two-sided transfer events to the account topics.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"readmodel/internal/config"
	"readmodel/internal/domain/event"
	kafka_infra "readmodel/internal/infrastructure/kafka"
	"readmodel/internal/util"
)

var ownerNames = []string{"Alice", "Bob", "Carol", "Dave", "Erin", "Frank", "Grace", "Heidi"}

type generator struct {
	cfg      *config.Config
	producer kafka_infra.Producer

	// local mirror of balances, only used to decide when to refill an
	// account the way simulate-traffic style load scripts do
	balances map[string]decimal.Decimal
	accounts []string
}

func main() {
	accounts := flag.Int("accounts", 5, "number of accounts to seed")
	interval := flag.Duration("interval", 250*time.Millisecond, "delay between generated events")
	count := flag.Int("count", 0, "number of events to generate after seeding (0 = run until interrupted)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	zapConfig := zap.NewProductionConfig()
	zapConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zapConfig.EncoderConfig.TimeKey = "timestamp"
	logger, err := zapConfig.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create zap logger: %v\n", err)
		os.Exit(1)
	}

	producer := kafka_infra.NewProducer(cfg.GetKafkaBrokers(), logger.With(zap.String("component", "KafkaProducer")))
	defer func() {
		if err := producer.Close(); err != nil {
			logger.Error("Error closing Kafka producer", zap.Error(err))
		}
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	g := &generator{
		cfg:      cfg,
		producer: producer,
		balances: make(map[string]decimal.Decimal),
	}

	if err := g.seedAccounts(ctx, *accounts); err != nil {
		logger.Fatal("Failed to seed accounts", zap.Error(err))
	}
	logger.Info("Seeded accounts", zap.Int("count", *accounts))

	emitted := 0
	for *count == 0 || emitted < *count {
		if err := g.emitRandomEvent(ctx); err != nil {
			if ctx.Err() != nil {
				break
			}
			logger.Error("Failed to emit event", zap.Error(err))
		}
		emitted++

		select {
		case <-ctx.Done():
			logger.Info("Stopping event generator", zap.Int("events_emitted", emitted))
			return
		case <-time.After(*interval):
		}
	}
	logger.Info("Event generator finished", zap.Int("events_emitted", emitted))
}

func (g *generator) seedAccounts(ctx context.Context, n int) error {
	initialBalance := decimal.NewFromInt(1000)
	for i := 0; i < n; i++ {
		accountID := fmt.Sprintf("acc-%03d", i+1)
		data := event.AccountCreatedData{
			AccountID:      accountID,
			OwnerName:      ownerNames[i%len(ownerNames)],
			InitialBalance: &initialBalance,
			Currency:       "USD",
		}
		if err := g.publish(ctx, g.cfg.KafkaAccountCreatedTopic, accountID, event.TypeAccountCreated, data); err != nil {
			return err
		}
		g.accounts = append(g.accounts, accountID)
		g.balances[accountID] = initialBalance
	}
	return nil
}

func (g *generator) emitRandomEvent(ctx context.Context) error {
	switch rand.Intn(3) {
	case 0:
		return g.emitDeposit(ctx)
	case 1:
		return g.emitWithdrawal(ctx)
	default:
		return g.emitTransfer(ctx)
	}
}

func (g *generator) emitDeposit(ctx context.Context) error {
	accountID := g.randomAccount()
	amount := randomAmount()
	data := event.MoneyMovedData{
		Amount:      &amount,
		Description: "Generated deposit",
	}
	if err := g.publish(ctx, g.cfg.KafkaMoneyDepositedTopic, accountID, event.TypeMoneyDeposited, data); err != nil {
		return err
	}
	g.balances[accountID] = g.balances[accountID].Add(amount)
	return nil
}

func (g *generator) emitWithdrawal(ctx context.Context) error {
	accountID := g.randomAccount()
	if g.balances[accountID].LessThan(decimal.NewFromInt(100)) {
		// Low balance: top the account up first, like the original chaos
		// script's refill deposits.
		return g.emitDeposit(ctx)
	}
	amount := randomAmount()
	data := event.MoneyMovedData{
		Amount:      &amount,
		Description: "Generated withdrawal",
	}
	if err := g.publish(ctx, g.cfg.KafkaMoneyWithdrawnTopic, accountID, event.TypeMoneyWithdrawn, data); err != nil {
		return err
	}
	g.balances[accountID] = g.balances[accountID].Sub(amount)
	return nil
}

// emitTransfer publishes the two causally related sides of one transfer: a
// withdrawal on the source account and a deposit on the destination, sharing
// a transfer_id. Each event gets its own event_id.
func (g *generator) emitTransfer(ctx context.Context) error {
	if len(g.accounts) < 2 {
		return g.emitDeposit(ctx)
	}
	from := g.randomAccount()
	to := g.randomAccount()
	for to == from {
		to = g.randomAccount()
	}
	if g.balances[from].LessThan(decimal.NewFromInt(100)) {
		return g.emitDeposit(ctx)
	}

	transferID := util.GenerateUUID()
	amount := randomAmount()
	description := fmt.Sprintf("Generated transfer %s -> %s", from, to)

	withdrawal := event.MoneyMovedData{
		Amount:      &amount,
		Description: description,
		TransferID:  transferID,
		Recipient:   to,
	}
	if err := g.publish(ctx, g.cfg.KafkaMoneyWithdrawnTopic, from, event.TypeMoneyWithdrawn, withdrawal); err != nil {
		return err
	}

	deposit := event.MoneyMovedData{
		Amount:      &amount,
		Description: description,
		TransferID:  transferID,
		Sender:      from,
	}
	if err := g.publish(ctx, g.cfg.KafkaMoneyDepositedTopic, to, event.TypeMoneyDeposited, deposit); err != nil {
		return err
	}

	g.balances[from] = g.balances[from].Sub(amount)
	g.balances[to] = g.balances[to].Add(amount)
	return nil
}

func (g *generator) publish(ctx context.Context, topic, aggregateID, eventType string, data any) error {
	env, err := event.NewEnvelope(util.GenerateUUID(), aggregateID, eventType, time.Now().UTC(), data)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to marshal envelope: %w", err)
	}
	return g.producer.Produce(ctx, topic, aggregateID, raw)
}

func (g *generator) randomAccount() string {
	return g.accounts[rand.Intn(len(g.accounts))]
}

func randomAmount() decimal.Decimal {
	return decimal.NewFromInt(int64(rand.Intn(100) + 1))
}
