// Command server runs the lifecycle-record service for the three deployed
// asset instances. It wires storage (in-memory, Postgres, or Redis for
// aggregates), the per-asset token ledgers, audit publishing and the HTTP
// transport, then blocks until shutdown.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"rwa-ledger/internal/audit"
	"rwa-ledger/internal/bond"
	"rwa-ledger/internal/carbon"
	"rwa-ledger/internal/jwtauth"
	"rwa-ledger/internal/lifecycle"
	"rwa-ledger/internal/oil"
	"rwa-ledger/internal/platform/config"
	"rwa-ledger/internal/platform/httpserver"
	"rwa-ledger/internal/platform/logger"
	"rwa-ledger/internal/platform/metrics"
	"rwa-ledger/internal/storage/postgres"
	storageredis "rwa-ledger/internal/storage/redis"
	"rwa-ledger/internal/token"
	httptransport "rwa-ledger/internal/transport/http"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

type storeSet struct {
	bondInfo     lifecycle.AggregateStore[bond.Info]
	bondPayments lifecycle.RecordStore[bond.CouponPayment]
	bondRedeems  lifecycle.RecordStore[bond.RedemptionRecord]
	bondXfers    lifecycle.RecordStore[bond.Transfer]
	bondCalcs    lifecycle.RecordStore[bond.InterestCalculation]

	carbonInfo    lifecycle.AggregateStore[carbon.ProjectInfo]
	verifications lifecycle.RecordStore[carbon.VerificationRecord]
	retirements   lifecycle.RecordStore[carbon.RetirementRecord]

	oilInfo     lifecycle.AggregateStore[oil.ReserveInfo]
	extractions lifecycle.RecordStore[oil.ExtractionRecord]
	audits      lifecycle.RecordStore[oil.ReserveAudit]
	trades      lifecycle.RecordStore[oil.TradingRecord]
}

// buildStores picks the persistence backend. A Postgres DSN moves records
// and aggregates to Postgres; a Redis address additionally moves the hot
// aggregates to Redis. With neither, everything is in memory.
func buildStores(ctx context.Context, cfg config.Server) (storeSet, func(), error) {
	var s storeSet
	cleanup := func() {}

	if cfg.PostgresDSN == "" {
		s.bondInfo = lifecycle.NewMemoryAggregateStore[bond.Info]()
		s.bondPayments = lifecycle.NewMemoryRecordStore[bond.CouponPayment]()
		s.bondRedeems = lifecycle.NewMemoryRecordStore[bond.RedemptionRecord]()
		s.bondXfers = lifecycle.NewMemoryRecordStore[bond.Transfer]()
		s.bondCalcs = lifecycle.NewMemoryRecordStore[bond.InterestCalculation]()
		s.carbonInfo = lifecycle.NewMemoryAggregateStore[carbon.ProjectInfo]()
		s.verifications = lifecycle.NewMemoryRecordStore[carbon.VerificationRecord]()
		s.retirements = lifecycle.NewMemoryRecordStore[carbon.RetirementRecord]()
		s.oilInfo = lifecycle.NewMemoryAggregateStore[oil.ReserveInfo]()
		s.extractions = lifecycle.NewMemoryRecordStore[oil.ExtractionRecord]()
		s.audits = lifecycle.NewMemoryRecordStore[oil.ReserveAudit]()
		s.trades = lifecycle.NewMemoryRecordStore[oil.TradingRecord]()
		return s, cleanup, nil
	}

	db, err := postgres.Open(ctx, cfg.PostgresDSN)
	if err != nil {
		return s, cleanup, err
	}
	if err := postgres.Migrate(ctx, db); err != nil {
		db.Close()
		return s, cleanup, err
	}
	cleanup = func() { db.Close() }

	s.bondPayments = postgres.NewRecordStore[bond.CouponPayment](db, "bond_payments")
	s.bondRedeems = postgres.NewRecordStore[bond.RedemptionRecord](db, "bond_redemptions")
	s.bondXfers = postgres.NewRecordStore[bond.Transfer](db, "bond_transfers")
	s.bondCalcs = postgres.NewRecordStore[bond.InterestCalculation](db, "bond_calculations")
	s.verifications = postgres.NewRecordStore[carbon.VerificationRecord](db, "carbon_verifications")
	s.retirements = postgres.NewRecordStore[carbon.RetirementRecord](db, "carbon_retirements")
	s.extractions = postgres.NewRecordStore[oil.ExtractionRecord](db, "oil_extractions")
	s.audits = postgres.NewRecordStore[oil.ReserveAudit](db, "oil_audits")
	s.trades = postgres.NewRecordStore[oil.TradingRecord](db, "oil_trades")

	if cfg.RedisAddr != "" {
		client := goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			db.Close()
			return s, func() {}, err
		}
		prev := cleanup
		cleanup = func() { client.Close(); prev() }
		s.bondInfo = storageredis.NewAggregateStore[bond.Info](client, bond.Asset)
		s.carbonInfo = storageredis.NewAggregateStore[carbon.ProjectInfo](client, carbon.Asset)
		s.oilInfo = storageredis.NewAggregateStore[oil.ReserveInfo](client, oil.Asset)
	} else {
		s.bondInfo = postgres.NewAggregateStore[bond.Info](db, bond.Asset)
		s.carbonInfo = postgres.NewAggregateStore[carbon.ProjectInfo](db, carbon.Asset)
		s.oilInfo = postgres.NewAggregateStore[oil.ReserveInfo](db, oil.Asset)
	}
	return s, cleanup, nil
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	stores, cleanup, err := buildStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	doc, err := loadAssetsDocument(cfg.AssetsFile)
	if err != nil {
		return err
	}

	bondLedger, err := token.NewInMemoryLedger(doc.Bond.Info.Issuer, doc.Bond.InitialBalances)
	if err != nil {
		return err
	}
	carbonLedger, err := token.NewInMemoryLedger(doc.Carbon.Info.VerificationBody, doc.Carbon.InitialBalances)
	if err != nil {
		return err
	}
	oilLedger, err := token.NewInMemoryLedger(doc.Oil.Info.ExtractionCompany, doc.Oil.InitialBalances)
	if err != nil {
		return err
	}

	auditStore := audit.Store(audit.NewMemoryStore())
	if len(cfg.KafkaBrokers) > 0 {
		sink, err := audit.NewKafkaSink(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			return err
		}
		defer sink.Close()
		auditStore = audit.Tee{auditStore, sink}
	}
	auditQueue := audit.NewQueue(auditStore, 256)
	publisher := audit.NewPublisher(auditQueue)

	m := metrics.New()

	bondService := bond.New(
		stores.bondInfo, stores.bondPayments, stores.bondRedeems, stores.bondXfers, stores.bondCalcs,
		bondLedger,
		bond.WithLogger(log), bond.WithAuditPublisher(publisher), bond.WithMetrics(m),
	)
	carbonService := carbon.New(
		stores.carbonInfo, stores.verifications, stores.retirements,
		carbonLedger,
		carbon.WithLogger(log), carbon.WithAuditPublisher(publisher), carbon.WithMetrics(m),
	)
	oilService := oil.New(
		stores.oilInfo, stores.extractions, stores.audits, stores.trades,
		oilLedger,
		oil.WithLogger(log), oil.WithAuditPublisher(publisher), oil.WithMetrics(m),
	)

	if err := bondService.Init(ctx, doc.Bond.Info); err != nil {
		return err
	}
	if err := carbonService.Init(ctx, doc.Carbon.Info); err != nil {
		return err
	}
	if err := oilService.Init(ctx, doc.Oil.Info); err != nil {
		return err
	}

	jwtService := jwtauth.NewService(cfg.JWTSigningKey, "rwa-ledger")

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Bond:         bondService,
		BondLedger:   bondLedger,
		Carbon:       carbonService,
		CarbonLedger: carbonLedger,
		Oil:          oilService,
		OilLedger:    oilLedger,
		Validator:    jwtService,
		Logger:       log,
		Metrics:      m,
	})

	srv := httpserver.New(cfg.Addr, router)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		if err := auditQueue.Worker().Run(groupCtx); !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		log.Info("starting rwa-ledger", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info("rwa-ledger stopped")
	return nil
}
