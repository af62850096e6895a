package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dentalcore/backupd/internal/core"
	"github.com/dentalcore/backupd/internal/model"
)

const (
	devTenantID  = "clinic_demo_dev_000000000001"
	devSchema    = "clinic_demo"
	devAdminKey  = "dbk_dev_admin_do_not_use_in_prod_0000000000000001"
	devStaffKey  = "dbk_dev_staff_do_not_use_in_prod_0000000000000001"
	devPatientID = "pat_demo_dev_000000000001"
	devClinicID  = "cli_demo_dev_000000000001"
)

func main() {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	fmt.Println("Seeding backup service database...")

	tenants := core.NewTenantService(pool)
	keys := core.NewAPIKeyService(pool)

	fmt.Println("  Creating demo clinic...")
	now := time.Now()
	tenant := &model.Tenant{
		ID:         devTenantID,
		Name:       "Demo Dental Clinic",
		SchemaName: devSchema,
		Active:     true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	_, err = tenants.GetByID(ctx, devTenantID)
	if err != nil {
		if err := tenants.Create(ctx, tenant); err != nil {
			fmt.Fprintf(os.Stderr, "create tenant: %v\n", err)
			os.Exit(1)
		}
	}

	fmt.Println("  Inserting sample clinical data...")
	seedStatements := []struct {
		desc string
		sql  string
		args []any
	}{
		{"clinician", fmt.Sprintf(
			`INSERT INTO %s.clinicians (id, name, specialty, license_number) VALUES ($1, $2, $3, $4) ON CONFLICT (id) DO NOTHING`, devSchema),
			[]any{devClinicID, "Dr. Eva Holm", "orthodontics", "NO-12345"}},
		{"patient", fmt.Sprintf(
			`INSERT INTO %s.patients (id, name, birth_date, phone, email) VALUES ($1, $2, $3, $4, $5) ON CONFLICT (id) DO NOTHING`, devSchema),
			[]any{devPatientID, "Jan Demo", "1985-04-12", "+4712345678", "jan.demo@example.test"}},
		{"appointment", fmt.Sprintf(
			`INSERT INTO %s.appointments (id, patient_id, clinician_id, starts_at, ends_at, status) VALUES ($1, $2, $3, $4, $5, $6) ON CONFLICT (id) DO NOTHING`, devSchema),
			[]any{"apt_demo_dev_000000000001", devPatientID, devClinicID, now.Add(48 * time.Hour), now.Add(49 * time.Hour), "booked"}},
	}
	for _, stmt := range seedStatements {
		if _, err := pool.Exec(ctx, stmt.sql, stmt.args...); err != nil {
			fmt.Fprintf(os.Stderr, "insert %s: %v\n", stmt.desc, err)
			os.Exit(1)
		}
	}

	fmt.Println("  Setting daily backup schedule...")
	schedules := core.NewScheduleService(pool)
	if err := schedules.Update(ctx, tenant, &model.Schedule{Kind: model.ScheduleDaily, Hour: 3}); err != nil {
		fmt.Fprintf(os.Stderr, "set schedule: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("  Creating dev API keys...")
	if _, err := keys.CreateWithRawKey(ctx, "dev-admin", devAdminKey, model.RoleAdmin); err != nil {
		fmt.Fprintf(os.Stderr, "create admin key: %v\n", err)
		os.Exit(1)
	}
	if _, err := keys.CreateWithRawKey(ctx, "dev-staff", devStaffKey, model.RoleStaff); err != nil {
		fmt.Fprintf(os.Stderr, "create staff key: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Done.")
	fmt.Printf("  Admin key: %s\n", devAdminKey)
	fmt.Printf("  Staff key: %s\n", devStaffKey)
}
