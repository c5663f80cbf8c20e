package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"netpulse/internal/api"
	"netpulse/internal/config"
	"netpulse/internal/evaluator"
	"netpulse/internal/ingest"
	"netpulse/internal/notification"
	"netpulse/internal/processor"
	qmemory "netpulse/internal/queue/memory"
	"netpulse/internal/store/memory"
)

// testStack is one fully wired in-memory deployment.
type testStack struct {
	server   *api.Server
	configs  *memory.ConfigRepository
	alerts   *memory.AlertRepository
	channels *memory.ChannelRepository
	queue    *qmemory.Queue

	cancel context.CancelFunc
}

// newTestStack wires the memory-mode pipeline and starts the processor.
// Senders may be empty when the test does not exercise notifications.
func newTestStack(senders ...notification.Sender) *testStack {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	configs := memory.NewConfigRepository()
	alerts := memory.NewAlertRepository(configs)
	configs.AttachAlerts(alerts)
	channels := memory.NewChannelRepository()
	logs := memory.NewLogRepository()
	metricsRepo := memory.NewMetricRepository()
	cooldowns := memory.NewCooldownCache()
	q := qmemory.NewQueue(64)

	dispatcher := notification.NewDispatcher(channels, alerts, senders, 5*time.Second, logger)
	proc := processor.NewService(q, configs, alerts, logs, metricsRepo, cooldowns,
		evaluator.New(logger), dispatcher, logger)

	ingestSvc := ingest.NewService(q, logger)

	serverCfg := config.Default().Server
	server := api.NewServer(api.ServerDeps{
		Config:         &serverCfg,
		Logger:         logger,
		ConfigHandler:  api.NewConfigHandler(configs, logger),
		ChannelHandler: api.NewChannelHandler(channels, logger),
		AlertHandler:   api.NewAlertHandler(alerts, logger),
		IngestHandler:  api.NewIngestHandler(ingestSvc, logger),
	})

	ctx, cancel := context.WithCancel(context.Background())
	go proc.Start(ctx)

	return &testStack{
		server:   server,
		configs:  configs,
		alerts:   alerts,
		channels: channels,
		queue:    q,
		cancel:   cancel,
	}
}

func (s *testStack) stop() {
	s.cancel()
	s.queue.Close()
}

// doRequest performs an HTTP request against the in-process app.
func (s *testStack) doRequest(method, path string, body interface{}) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, path, bodyReader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return s.server.App().Test(req, 10_000)
}

// parseResponse parses the standard response envelope into target.
func parseResponse(resp *http.Response, target interface{}) error {
	defer resp.Body.Close()
	return json.NewDecoder(resp.Body).Decode(target)
}

// dataField unwraps the data field of a parsed envelope.
func dataField(result map[string]interface{}) map[string]interface{} {
	data, _ := result["data"].(map[string]interface{})
	return data
}
