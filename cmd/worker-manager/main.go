// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"vms-workers/internal/common/aws"
	"vms-workers/internal/common/bizregistry"
	"vms-workers/internal/common/config"
	"vms-workers/internal/common/database"
	"vms-workers/internal/common/logger"
	"vms-workers/internal/common/metrics"
	"vms-workers/internal/common/observability"
	"vms-workers/internal/wizard"

	// Contract Workers (6)
	aw "vms-workers/internal/workers/contract/advance-wizard"
	cf "vms-workers/internal/workers/contract/calculate-fees"
	ccr "vms-workers/internal/workers/contract/create-record"
	lam "vms-workers/internal/workers/contract/lookup-active-msa"
	st "vms-workers/internal/workers/contract/select-template"
	vt "vms-workers/internal/workers/contract/validate-terms"

	// MSA Workers (2)
	mcp "vms-workers/internal/workers/msa/check-pending"
	mra "vms-workers/internal/workers/msa/record-approval"

	// Candidate Workers (2)
	cdc "vms-workers/internal/workers/candidate/check-duplicate"
	ccd "vms-workers/internal/workers/candidate/create-record"

	// Bureau Workers (1)
	ob "vms-workers/internal/workers/bureau/onboard-bureau"

	// Notification Workers (1)
	sn "vms-workers/internal/workers/notification/send-notification"

	// Data Access Workers (2)
	qe "vms-workers/internal/workers/data-access/query-elasticsearch"
	qp "vms-workers/internal/workers/data-access/query-postgresql"

	// Analytics Workers (1)
	adm "vms-workers/internal/workers/analytics/aggregate-dashboard-metrics"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs := observability.New("worker-manager")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init Zeebe Client with retry ---
	var zeebeClient zbc.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebeClient, err = zbc.NewClient(&zbc.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
		})
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")

	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		// Test the connection with context
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Elasticsearch with retry ---
	var esClient *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		// Test the connection
		return esClient.Ping()
	}, 15, 2*time.Second, zapLog, "Elasticsearch connection")

	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}
	zapLog.Info("Elasticsearch connected successfully")

	// --- Init Redis with retry ---
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		// Test the connection with context
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	// --- Init External Service Clients ---
	awsRegion := cfg.Integrations.AWS.Region
	if awsRegion == "" {
		awsRegion = "eu-west-1"
	}

	sesClient, err := aws.NewSESClient(ctx, awsRegion)
	if err != nil {
		zapLog.Fatal("ses client failed", zap.Error(err))
	}
	snsClient, err := aws.NewSNSClient(ctx, awsRegion)
	if err != nil {
		zapLog.Fatal("sns client failed", zap.Error(err))
	}

	registryClient := bizregistry.NewClient(
		cfg.Integrations.BusinessRegistry.BaseURL,
		cfg.Integrations.BusinessRegistry.APIKey,
		config.GetDuration(cfg.Integrations.BusinessRegistry.Timeout),
	)

	zapLog.Info("All external service clients initialized")

	// --- START: Register ALL 15 Workers ---

	// --- 1. Contract Workers (6) ---
	if cfg.Workers[st.TaskType].Enabled {
		handler := st.NewHandler(
			&st.Config{
				Timeout:  config.GetDuration(cfg.Workers[st.TaskType].Timeout),
				CacheTTL: time.Duration(cfg.Contracts.TemplateCacheTTL) * time.Minute,
			},
			pg.DB, redis.Client, log,
		)
		startWorker(zeebeClient, st.TaskType, cfg.Workers[st.TaskType], handler.Handle, zapLog)
	}

	if cfg.Workers[lam.TaskType].Enabled {
		handler := lam.NewHandler(
			&lam.Config{
				Timeout: config.GetDuration(cfg.Workers[lam.TaskType].Timeout),
			},
			pg.DB, log,
		)
		startWorker(zeebeClient, lam.TaskType, cfg.Workers[lam.TaskType], handler.Handle, zapLog)
	}

	if cfg.Workers[vt.TaskType].Enabled {
		handler := vt.NewHandler(
			&vt.Config{
				Timeout: config.GetDuration(cfg.Workers[vt.TaskType].Timeout),
			},
			log,
		)
		startWorker(zeebeClient, vt.TaskType, cfg.Workers[vt.TaskType], handler.Handle, zapLog)
	}

	if cfg.Workers[cf.TaskType].Enabled {
		handler := cf.NewHandler(
			&cf.Config{
				Timeout:         config.GetDuration(cfg.Workers[cf.TaskType].Timeout),
				FeeStructureTTL: time.Duration(cfg.Contracts.FeeStructureTTL) * time.Minute,
				HoursPerMonth:   float64(cfg.Contracts.EstimatedHoursPerMonth),
			},
			pg.DB, redis.Client, log,
		)
		startWorker(zeebeClient, cf.TaskType, cfg.Workers[cf.TaskType], handler.Handle, zapLog)
	}

	if cfg.Workers[ccr.TaskType].Enabled {
		handler := ccr.NewHandler(
			&ccr.Config{
				Timeout: config.GetDuration(cfg.Workers[ccr.TaskType].Timeout),
			},
			pg.DB, log,
		)
		startWorker(zeebeClient, ccr.TaskType, cfg.Workers[ccr.TaskType], handler.Handle, zapLog)
	}

	if cfg.Workers[aw.TaskType].Enabled {
		sessionTTL := time.Duration(cfg.Contracts.WizardSessionTTL) * time.Minute
		handler := aw.NewHandler(
			&aw.Config{
				Timeout:    config.GetDuration(cfg.Workers[aw.TaskType].Timeout),
				SessionTTL: sessionTTL,
			},
			wizard.NewSessionStore(redis.Client, sessionTTL),
			log,
		)
		startWorker(zeebeClient, aw.TaskType, cfg.Workers[aw.TaskType], handler.Handle, zapLog)
	}

	// --- 2. MSA Workers (2) ---
	if cfg.Workers[mra.TaskType].Enabled {
		handler := mra.NewHandler(
			&mra.Config{
				Timeout: config.GetDuration(cfg.Workers[mra.TaskType].Timeout),
			},
			pg, log,
		)
		startWorker(zeebeClient, mra.TaskType, cfg.Workers[mra.TaskType], handler.Handle, zapLog)
	}

	if cfg.Workers[mcp.TaskType].Enabled {
		handler := mcp.NewHandler(
			&mcp.Config{
				Timeout:  config.GetDuration(cfg.Workers[mcp.TaskType].Timeout),
				CacheTTL: 2 * time.Minute,
			},
			pg.DB, redis.Client, log,
		)
		startWorker(zeebeClient, mcp.TaskType, cfg.Workers[mcp.TaskType], handler.Handle, zapLog)
	}

	// --- 3. Candidate Workers (2) ---
	if cfg.Workers[cdc.TaskType].Enabled {
		handler := cdc.NewHandler(
			&cdc.Config{
				Timeout: config.GetDuration(cfg.Workers[cdc.TaskType].Timeout),
			},
			pg.DB, log,
		)
		startWorker(zeebeClient, cdc.TaskType, cfg.Workers[cdc.TaskType], handler.Handle, zapLog)
	}

	if cfg.Workers[ccd.TaskType].Enabled {
		handler := ccd.NewHandler(
			&ccd.Config{
				Timeout:              config.GetDuration(cfg.Workers[ccd.TaskType].Timeout),
				DefaultOwnershipDays: cfg.Candidates.DefaultOwnershipDays,
			},
			pg, log,
		)
		startWorker(zeebeClient, ccd.TaskType, cfg.Workers[ccd.TaskType], handler.Handle, zapLog)
	}

	// --- 4. Bureau Workers (1) ---
	if cfg.Workers[ob.TaskType].Enabled {
		obCfg := ob.LoadConfig()
		obCfg.Timeout = config.GetDuration(cfg.Workers[ob.TaskType].Timeout)
		obCfg.SkipRegistryValidation = cfg.Integrations.BusinessRegistry.BaseURL == ""
		handler := ob.NewHandler(obCfg, pg, registryClient, log)
		startWorker(zeebeClient, ob.TaskType, cfg.Workers[ob.TaskType], handler.Handle, zapLog)
	}

	// --- 5. Notification Workers (1) ---
	if cfg.Workers[sn.TaskType].Enabled {
		snCfg := sn.LoadConfig()
		snCfg.Timeout = config.GetDuration(cfg.Workers[sn.TaskType].Timeout)
		if cfg.Notifications.Email.FromEmail != "" {
			snCfg.SenderEmail = cfg.Notifications.Email.FromEmail
		}
		if cfg.Notifications.SMS.PriorityThreshold != "" {
			snCfg.SMSPriority = cfg.Notifications.SMS.PriorityThreshold
		}
		handler := sn.NewHandler(snCfg, pg.DB, sesClient, snsClient, log)
		startWorker(zeebeClient, sn.TaskType, cfg.Workers[sn.TaskType], handler.Handle, zapLog)
	}

	// --- 6. Data Access Workers (2) ---
	if cfg.Workers[qp.TaskType].Enabled {
		handler := qp.NewHandler(
			&qp.Config{
				Timeout: config.GetDuration(cfg.Workers[qp.TaskType].Timeout),
			},
			pg.DB, log,
		)
		startWorker(zeebeClient, qp.TaskType, cfg.Workers[qp.TaskType], handler.Handle, zapLog)
	}

	if cfg.Workers[qe.TaskType].Enabled {
		handler := qe.NewHandler(
			&qe.Config{
				Timeout: config.GetDuration(cfg.Workers[qe.TaskType].Timeout),
			},
			esClient.Client, log,
		)
		startWorker(zeebeClient, qe.TaskType, cfg.Workers[qe.TaskType], handler.Handle, zapLog)
	}

	// --- 7. Analytics Workers (1) ---
	if cfg.Workers[adm.TaskType].Enabled {
		handler := adm.NewHandler(
			&adm.Config{
				Timeout:  config.GetDuration(cfg.Workers[adm.TaskType].Timeout),
				CacheTTL: 10 * time.Minute,
			},
			pg.DB, redis.Client, log,
		)
		startWorker(zeebeClient, adm.TaskType, cfg.Workers[adm.TaskType], handler.Handle, zapLog)
	}

	zapLog.Info("All 15 workers registered successfully")

	// --- MSA Pending-Approval Sweep ---
	sweeper := cron.New()
	_, err = sweeper.AddFunc(cfg.Notifications.MSASweepSchedule, func() {
		sweepPendingMSAs(zeebeClient, pg, zapLog)
	})
	if err != nil {
		zapLog.Fatal("msa sweep schedule invalid", zap.Error(err))
	}
	sweeper.Start()
	defer sweeper.Stop()
	zapLog.Info("MSA pending-approval sweep scheduled", zap.String("schedule", cfg.Notifications.MSASweepSchedule))

	// --- Health & Metrics Server ---
	go func() {
		http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "healthy",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "ready",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.Handle("/metrics", promhttp.Handler())
		zapLog.Info("Health/Metrics server listening on :8080")
		if err := http.ListenAndServe(":8080", nil); err != nil {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	_ = shutdownCtx

	if err := zeebeClient.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

// sweepPendingMSAs publishes a reminder message for every agreement still
// waiting on a signature, so the notification process can nudge the
// responsible party. The gauge tracks what the last sweep saw.
func sweepPendingMSAs(client zbc.Client, pg *database.PostgresClient, log *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	rows, err := pg.Query(ctx, `
		SELECT id, msa_number,
		       CASE WHEN company_signed_at IS NULL THEN 'COMPANY' ELSE 'BUREAU' END AS awaiting_party
		FROM msas
		WHERE status IN ('DRAFT', 'PENDING_SIGNATURES')
		  AND (company_signed_at IS NULL OR bureau_signed_at IS NULL)`)
	if err != nil {
		log.Error("msa sweep query failed", zap.Error(err))
		return
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		var id, msaNumber, awaitingParty string
		if err := rows.Scan(&id, &msaNumber, &awaitingParty); err != nil {
			log.Error("msa sweep scan failed", zap.Error(err))
			return
		}
		count++

		cmd, err := client.NewPublishMessageCommand().
			MessageName("msa-pending-reminder").
			CorrelationKey(id).
			VariablesFromObject(map[string]interface{}{
				"msaId":         id,
				"msaNumber":     msaNumber,
				"awaitingParty": awaitingParty,
			})
		if err != nil {
			log.Error("msa sweep variables failed", zap.Error(err), zap.String("msaId", id))
			continue
		}
		if _, err := cmd.Send(ctx); err != nil {
			log.Warn("msa reminder publish failed", zap.Error(err), zap.String("msaId", id))
		}
	}
	if err := rows.Err(); err != nil {
		log.Error("msa sweep rows failed", zap.Error(err))
		return
	}

	metrics.MSASweepPending.Set(float64(count))
	log.Info("msa sweep completed", zap.Int("pending", count))
}

func startWorker(client zbc.Client, taskType string, wcfg config.WorkerConfig, handlerFunc func(worker.JobClient, entities.Job), log *zap.Logger) {
	if !wcfg.Enabled {
		log.Info("worker disabled", zap.String("taskType", taskType))
		return
	}

	client.NewJobWorker().
		JobType(taskType).
		Handler(handlerFunc).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(time.Duration(wcfg.Timeout) * time.Millisecond).
		Open()

	log.Info("worker started",
		zap.String("taskType", taskType),
		zap.Int("maxJobsActive", wcfg.MaxJobsActive),
		zap.Int("timeout_ms", wcfg.Timeout),
	)
}
