package consumer

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bakehouse/storefront/internal/orders/repository"
	kafkaGo "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const testTopic = "orders-outbox"

func setupKafka(t *testing.T) (string, func()) {
	ctx := context.Background()

	kafkaContainer, err := kafka.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err)

	brokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)

	cleanup := func() {
		if err := kafkaContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate kafka container: %v", err)
		}
	}

	return brokers[0], cleanup
}

func setupPostgres(t *testing.T) (repository.OrderRepository, func()) {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	host, err := pgContainer.Host(ctx)
	require.NoError(t, err)

	port, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	creds := &repository.Credentials{
		Host:              host,
		Port:              port.Int(),
		User:              "testuser",
		Password:          "testpass",
		DBName:            "testdb",
		MigrationsDirPath: "../repository/migrations",
	}

	repo, err := repository.NewRepository(creds)
	require.NoError(t, err)

	err = repo.RunMigrations(creds)
	require.NoError(t, err)

	cleanup := func() {
		repo.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate postgres container: %s", err)
		}
	}

	return repo, cleanup
}

func createTopic(t *testing.T, brokerAddr, topic string) {
	conn, err := kafkaGo.Dial("tcp", brokerAddr)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)

	controllerConn, err := kafkaGo.Dial("tcp", fmt.Sprintf("%s:%d", controller.Host, controller.Port))
	require.NoError(t, err)
	defer controllerConn.Close()

	err = controllerConn.CreateTopics(kafkaGo.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	})
	if err != nil {
		t.Logf("topic creation error (may already exist): %v", err)
	}
}

func writeMessages(t *testing.T, brokerAddr string, msgs ...kafkaGo.Message) {
	w := &kafkaGo.Writer{
		Addr:                   kafkaGo.TCP(brokerAddr),
		Topic:                  testTopic,
		Balancer:               &kafkaGo.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	defer w.Close()

	require.NoError(t, w.WriteMessages(context.Background(), msgs...))
}

func TestConsumer_StoresOrderOnce(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping kafka integration test in short mode")
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	brokerAddr, cleanupKafka := setupKafka(t)
	defer cleanupKafka()

	repo, cleanupPostgres := setupPostgres(t)
	defer cleanupPostgres()

	createTopic(t, brokerAddr, testTopic)

	// the outbox guarantees at-least-once, so the same event may arrive twice
	msg := placedMessage(t, true)
	writeMessages(t, brokerAddr, msg, msg)

	c := NewConsumer(repo, testTopic, "orders-consumer-test", nil, brokerAddr)
	defer c.Close()
	go func() { _ = c.Run(ctx) }()

	require.Eventually(t, func() bool {
		order, err := repo.GetOrder(ctx, "ORD-42")
		return err == nil && order.PaymentID == "pay_1"
	}, 20*time.Second, 500*time.Millisecond)

	time.Sleep(2 * time.Second)

	orders, err := repo.ListOrders(ctx, 0)
	require.NoError(t, err)
	require.Len(t, orders, 1, "duplicate events must not create a second order")
}
