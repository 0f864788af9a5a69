package http

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
)

func NewRouter(
	timesheetHandler TimesheetHandler,
	billingHandler BillingHandler,
	invoiceHandler InvoiceHandler,
	insuranceHandler InsuranceHandler,
	payrollHandler PayrollHandler,
) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "billing-backend"),
		slog.String("version", "v1.0.0"),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {

		r.Route("/timesheets", func(r chi.Router) {
			r.Post("/validate-overlaps", timesheetHandler.ValidateOverlaps)
		})

		r.Route("/billing", func(r chi.Router) {
			r.Post("/preview", billingHandler.Preview)
		})

		r.Route("/invoices", func(r chi.Router) {
			r.Post("/generate", invoiceHandler.Generate)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", invoiceHandler.Get)
				r.Delete("/", invoiceHandler.Delete)
				r.Post("/approve", invoiceHandler.Approve)
				r.Post("/send", invoiceHandler.Send)
				r.Post("/payments", invoiceHandler.RecordPayment)
				r.Post("/adjustments", invoiceHandler.RecordAdjustment)
			})
		})

		r.Route("/insurances/{id}", func(r chi.Router) {
			r.Get("/", insuranceHandler.Get)
			r.Patch("/rates", insuranceHandler.UpdateRates)
			r.Get("/rate-history", insuranceHandler.GetRateHistory)
		})

		r.Route("/payroll/runs", func(r chi.Router) {
			r.Post("/", payrollHandler.CreateRun)
			r.Get("/{id}", payrollHandler.GetRun)
			r.Post("/{id}/lines/{lineID}/payments", payrollHandler.RecordLinePayment)
		})
	})

	return r
}
