package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/brightpath-aba/billing-backend-go/internal/config"
	appHTTP "github.com/brightpath-aba/billing-backend-go/internal/handler/http"
	"github.com/brightpath-aba/billing-backend-go/internal/pkg/database"
	"github.com/brightpath-aba/billing-backend-go/internal/repository/postgresql"
	billingService "github.com/brightpath-aba/billing-backend-go/internal/service/billing"
	insuranceService "github.com/brightpath-aba/billing-backend-go/internal/service/insurance"
	invoicingService "github.com/brightpath-aba/billing-backend-go/internal/service/invoicing"
	overlapService "github.com/brightpath-aba/billing-backend-go/internal/service/overlap"
	payrollService "github.com/brightpath-aba/billing-backend-go/internal/service/payroll"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	loc, err := time.LoadLocation(cfg.Billing.Timezone)
	if err != nil {
		fmt.Println("Error loading billing timezone:", err)
		return
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil)).With(
		slog.String("app", "billing-backend"),
		slog.String("env", cfg.App.Env),
	)

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}
	defer db.Close()

	txManager := postgresql.NewTxManager(db)
	timesheetRepo := postgresql.NewTimesheetRepository(db)
	insuranceRepo := postgresql.NewInsuranceRepository(db)
	invoiceRepo := postgresql.NewInvoiceRepository(db)
	sequence := postgresql.NewInvoiceNumberSequence(db, cfg.Billing.InvoicePrefix)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	importRowRepo := postgresql.NewImportRowRepository(db)
	runRepo := postgresql.NewRunRepository(db)
	auditRecorder := postgresql.NewAuditRecorder(db)

	calculator := billingService.NewCalculator(cfg.Billing.DefaultUnitMinutes)

	overlapSvc := overlapService.NewOverlapService(timesheetRepo, loc)
	billingSvc := billingService.NewBillingService(insuranceRepo, calculator)
	invoiceSvc := invoicingService.NewInvoiceService(
		txManager,
		timesheetRepo,
		insuranceRepo,
		invoiceRepo,
		sequence,
		calculator,
		auditRecorder,
		logger,
		loc,
	)
	insuranceSvc := insuranceService.NewInsuranceService(txManager, insuranceRepo, auditRecorder, logger)
	runSvc := payrollService.NewRunService(txManager, runRepo, importRowRepo, employeeRepo, auditRecorder, logger)

	router := appHTTP.NewRouter(
		appHTTP.NewTimesheetHandler(overlapSvc),
		appHTTP.NewBillingHandler(billingSvc),
		appHTTP.NewInvoiceHandler(invoiceSvc),
		appHTTP.NewInsuranceHandler(insuranceSvc),
		appHTTP.NewPayrollHandler(runSvc),
	)

	addr := fmt.Sprintf(":%d", cfg.App.Port)
	logger.Info("server starting", slog.String("addr", addr))
	if err := http.ListenAndServe(addr, router); err != nil {
		logger.Error("server stopped", slog.String("error", err.Error()))
	}
}
