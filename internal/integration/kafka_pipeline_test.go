//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/mine-data-normalizer/internal/adapter/audit"
	"github.com/couchcryptid/mine-data-normalizer/internal/adapter/kafka"
	"github.com/couchcryptid/mine-data-normalizer/internal/config"
	"github.com/couchcryptid/mine-data-normalizer/internal/domain"
	"github.com/couchcryptid/mine-data-normalizer/internal/observability"
	"github.com/couchcryptid/mine-data-normalizer/internal/pipeline"
)

const (
	testSourceTopic = "test-source"
	testSinkTopic   = "test-sink"
)

var sourceTime = time.Date(2026, time.March, 14, 0, 0, 0, 0, time.UTC)

// normalizedMessage holds a deserialized message read from the sink topic.
type normalizedMessage struct {
	Record  domain.MineRecord
	Key     string
	Headers map[string]string
}

// readNormalized reads a single message from the sink consumer and deserializes it.
func readNormalized(ctx context.Context, t *testing.T, consumer *kafkago.Reader) normalizedMessage {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from sink topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	var record domain.MineRecord
	require.NoError(t, json.Unmarshal(msg.Value, &record), "unmarshal sink message")

	return normalizedMessage{
		Record:  record,
		Key:     string(msg.Key),
		Headers: headers,
	}
}

func testConfig(broker, group string) *config.Config {
	return &config.Config{
		KafkaBrokers:       []string{broker},
		KafkaSourceTopic:   testSourceTopic,
		KafkaSinkTopic:     testSinkTopic,
		KafkaGroupID:       fmt.Sprintf("%s-%d", group, time.Now().UnixNano()),
		BatchFlushInterval: 5 * time.Second,
	}
}

func sinkConsumer(t *testing.T, broker string) *kafkago.Reader {
	t.Helper()
	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testSinkTopic,
		GroupID:     fmt.Sprintf("test-sink-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })
	return consumer
}

func sourceProducer(t *testing.T, broker string) *kafkago.Writer {
	t.Helper()
	producer := &kafkago.Writer{
		Addr:  kafkago.TCP(broker),
		Topic: testSourceTopic,
	}
	t.Cleanup(func() { _ = producer.Close() })
	return producer
}

// TestKafkaReaderWriter verifies the adapter layer: kafka.Reader (Extractor) and
// kafka.Writer (Loader) correctly round-trip a record through Kafka.
func TestKafkaReaderWriter(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSourceTopic)
	createTopic(t, broker, testSinkTopic)
	cfg := testConfig(broker, "test-reader")

	payload := loadMockData(t)[1] // Éléonore
	require.NoError(t, sourceProducer(t, broker).WriteMessages(ctx, kafkago.Message{
		Key:   []byte("test-key"),
		Value: payload,
		Time:  sourceTime,
	}))

	// Retry because the consumer group may need time to rebalance before
	// partitions are assigned and messages become available.
	reader := kafka.NewReader(cfg, discardLogger())
	t.Cleanup(func() { _ = reader.Close() })

	var batch []domain.RawEvent
	for {
		var err error
		batch, err = reader.ExtractBatch(ctx, 1)
		require.NoError(t, err)
		if len(batch) > 0 {
			break
		}
		if ctx.Err() != nil {
			t.Fatal("timed out waiting for message from source topic")
		}
	}
	require.Len(t, batch, 1)
	raw := batch[0]
	assert.Equal(t, []byte("test-key"), raw.Key)
	assert.JSONEq(t, string(payload), string(raw.Value))
	assert.Equal(t, testSourceTopic, raw.Topic)
	require.NotNil(t, raw.Commit, "commit callback should be set")
	require.NoError(t, raw.Commit(ctx))

	transformer := pipeline.NewTransformer(nil, nil, observability.NewMetricsForTesting(), discardLogger())
	record, err := transformer.Transform(ctx, raw)
	require.NoError(t, err)

	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })
	require.NoError(t, writer.LoadBatch(ctx, []domain.MineRecord{record}))

	nm := readNormalized(ctx, t, sinkConsumer(t, broker))
	assert.Equal(t, record.ID, nm.Key)
	assert.Equal(t, "Éléonore", nm.Headers["mine_name"])
	_, err = time.Parse(time.RFC3339, nm.Headers["processed_at"])
	assert.NoError(t, err, "processed_at should be valid RFC3339")

	assert.Equal(t, "52.699547, -76.086981", nm.Record.Fields[domain.FieldLatLong])
	assert.Equal(t, "12.5000 km²", nm.Record.Fields["Gesamtfläche der Mine in qkm"])
	assert.True(t, sourceTime.Equal(nm.Record.SourceTimestamp))
}

// TestPipelineEndToEnd wires the full pipeline (Reader → Transformer → audit
// Loader → Writer) with real Kafka and verifies every mock record.
func TestPipelineEndToEnd(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSourceTopic)
	createTopic(t, broker, testSinkTopic)
	cfg := testConfig(broker, "test-pipeline")

	records := loadMockData(t)
	msgs := make([]kafkago.Message, 0, len(records))
	for i, rec := range records {
		msgs = append(msgs, kafkago.Message{
			Key:   []byte(fmt.Sprintf("record-%d", i)),
			Value: rec,
			Time:  sourceTime,
		})
	}
	require.NoError(t, sourceProducer(t, broker).WriteMessages(ctx, msgs...))

	reader := kafka.NewReader(cfg, discardLogger())
	t.Cleanup(func() { _ = reader.Close() })

	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	store, err := audit.Open(ctx, filepath.Join(t.TempDir(), "audit.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	metrics := observability.NewMetricsForTesting()
	transformer := pipeline.NewTransformer(nil, nil, metrics, discardLogger())
	p := pipeline.New(reader, transformer, audit.NewLoader(writer, store, discardLogger()), discardLogger(), metrics, 50)

	pipelineCtx, pipelineCancel := context.WithCancel(ctx)
	errCh := make(chan error, 1)
	go func() { errCh <- p.Run(pipelineCtx) }()

	consumer := sinkConsumer(t, broker)
	received := make(map[string]normalizedMessage, len(records))
	for len(received) < len(records) {
		nm := readNormalized(ctx, t, consumer)
		received[nm.Record.MineName] = nm
	}

	pipelineCancel()
	require.NoError(t, <-errCh)
	require.NoError(t, p.CheckReadiness(ctx))

	for name, nm := range received {
		assert.Equal(t, name, nm.Headers["mine_name"])
		assert.Equal(t, nm.Record.ID, nm.Key)
		_, err := time.Parse(time.RFC3339, nm.Headers["processed_at"])
		assert.NoError(t, err, "invalid processed_at for %s", name)
		assert.NotEmpty(t, nm.Record.Conversions, "no conversions for %s", name)
	}

	malartic := received["Canadian Malartic"].Record
	assert.Equal(t, "2400000.0 t/Jahr", malartic.Fields["Fördermenge"])
	assert.Equal(t, "48.123400, -78.132000", malartic.Fields[domain.FieldLatLong])
	assert.Equal(t, "48.1234, -78.1320", malartic.Fields["Standort_ORIGINAL"])

	troilus := received["Troilus"].Record
	assert.Equal(t, "keine Angabe", troilus.Fields["Fördermenge"])
	require.NotNil(t, troilus.Location)
	assert.Equal(t, 2, troilus.Location.Placeholders())
	assert.InDelta(t, 0.3, troilus.LocationConfidence, 1e-9)

	// Every conversion of every record reached the audit store.
	counts, err := store.OutcomeCounts(ctx)
	require.NoError(t, err)
	total := 0
	for _, n := range counts {
		total += n
	}
	want := 0
	for _, nm := range received {
		want += len(nm.Record.Conversions)
	}
	assert.Equal(t, want, total)

	entries, err := store.Conversions(ctx, malartic.ID)
	require.NoError(t, err)
	assert.Len(t, entries, len(malartic.Conversions))
}

// TestPipelineTransformError verifies that an invalid message (poison pill) is
// skipped and the pipeline continues processing valid messages.
func TestPipelineTransformError(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSourceTopic)
	createTopic(t, broker, testSinkTopic)
	cfg := testConfig(broker, "test-poison")

	validPayload := loadMockData(t)[2] // Raglan
	require.NoError(t, sourceProducer(t, broker).WriteMessages(ctx,
		kafkago.Message{Key: []byte("bad"), Value: []byte("not-json{{{"), Time: sourceTime},
		kafkago.Message{Key: []byte("good"), Value: validPayload, Time: sourceTime},
	))

	reader := kafka.NewReader(cfg, discardLogger())
	t.Cleanup(func() { _ = reader.Close() })

	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	metrics := observability.NewMetricsForTesting()
	transformer := pipeline.NewTransformer(nil, nil, metrics, discardLogger())
	p := pipeline.New(reader, transformer, writer, discardLogger(), metrics, 50)

	pipelineCtx, pipelineCancel := context.WithCancel(ctx)
	errCh := make(chan error, 1)
	go func() { errCh <- p.Run(pipelineCtx) }()

	consumer := sinkConsumer(t, broker)
	nm := readNormalized(ctx, t, consumer)
	assert.Equal(t, "Raglan", nm.Record.MineName)
	assert.Equal(t, "1300000.0 t/Jahr", nm.Record.Fields["Fördermenge"])

	// Verify no second message arrives (the poison pill was skipped).
	readCtx, readCancel := context.WithTimeout(ctx, 5*time.Second)
	_, err := consumer.ReadMessage(readCtx)
	readCancel()
	assert.Error(t, err, "expected no second message on sink topic")

	pipelineCancel()
	require.NoError(t, <-errCh)
}
