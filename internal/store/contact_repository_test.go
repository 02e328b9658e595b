package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"

	"github.com/jonesrussell/contactscout/internal/domain"
	"github.com/jonesrussell/contactscout/internal/store"
)

// contactColumns lists the columns returned by contacts SELECT queries.
var contactColumns = []string{
	"id", "organization_id", "first_name", "last_name", "job_title",
	"email", "email_valid", "phone", "discovery_method", "discovery_url",
	"contact_confidence_score", "contact_relevance_score", "contact_type",
	"notes", "created_at", "updated_at",
}

func newContactRepo(t *testing.T) (*store.ContactRepository, sqlmock.Sqlmock, func()) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}

	db := sqlx.NewDb(mockDB, "postgres")
	repo := store.NewContactRepository(db)

	return repo, mock, func() { mockDB.Close() }
}

func contactRow(now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows(contactColumns).AddRow(
		"contact-uuid-1", "org-uuid-1", "John", "Smith", "Water Operator",
		"jsmith@city.gov", true, "(202) 555-0100", "table",
		"https://springfield.gov/staff", 0.85, 7.0, "actual", "",
		now, now,
	)
}

func TestContactRepository_FindByEmail(t *testing.T) {
	repo, mock, cleanup := newContactRepo(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .+ FROM contacts WHERE email").
		WithArgs("jsmith@city.gov").
		WillReturnRows(contactRow(time.Now()))

	contact, err := repo.FindByEmail(context.Background(), "jsmith@city.gov")
	if err != nil {
		t.Fatalf("FindByEmail() error = %v", err)
	}
	if contact == nil {
		t.Fatal("FindByEmail() returned nil contact")
	}
	if contact.FirstName != "John" || contact.Email != "jsmith@city.gov" {
		t.Errorf("FindByEmail() = %+v", contact)
	}

	if expErr := mock.ExpectationsWereMet(); expErr != nil {
		t.Errorf("unmet expectations: %v", expErr)
	}
}

func TestContactRepository_FindByEmail_NotFound(t *testing.T) {
	repo, mock, cleanup := newContactRepo(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .+ FROM contacts WHERE email").
		WithArgs("nobody@city.gov").
		WillReturnRows(sqlmock.NewRows(contactColumns))

	contact, err := repo.FindByEmail(context.Background(), "nobody@city.gov")
	if err != nil {
		t.Fatalf("FindByEmail() error = %v", err)
	}
	if contact != nil {
		t.Errorf("FindByEmail() = %+v, want nil", contact)
	}
}

func TestContactRepository_FindByName(t *testing.T) {
	repo, mock, cleanup := newContactRepo(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .+ FROM contacts WHERE organization_id").
		WithArgs("org-uuid-1", "john", "smith").
		WillReturnRows(contactRow(time.Now()))

	contact, err := repo.FindByName(context.Background(), "org-uuid-1", "john", "smith")
	if err != nil {
		t.Fatalf("FindByName() error = %v", err)
	}
	if contact == nil || contact.ID != "contact-uuid-1" {
		t.Errorf("FindByName() = %+v", contact)
	}
}

func TestContactRepository_Insert(t *testing.T) {
	repo, mock, cleanup := newContactRepo(t)
	defer cleanup()

	mock.ExpectExec("INSERT INTO contacts").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Insert(context.Background(), &domain.CanonicalContact{
		ID:             "contact-uuid-2",
		OrganizationID: "org-uuid-1",
		FirstName:      "Jane",
		LastName:       "Doe",
		Email:          "jdoe@city.gov",
		ContactType:    domain.ContactTypeActual,
	})
	if err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	if expErr := mock.ExpectationsWereMet(); expErr != nil {
		t.Errorf("unmet expectations: %v", expErr)
	}
}

func TestContactRepository_Update(t *testing.T) {
	repo, mock, cleanup := newContactRepo(t)
	defer cleanup()

	title := "Utilities Director"
	relevance := 9.0

	mock.ExpectExec("UPDATE contacts SET").
		WithArgs(title, relevance, "Also seen elsewhere", "contact-uuid-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Update(context.Background(), "contact-uuid-1", &domain.Patch{
		JobTitle:       &title,
		RelevanceScore: &relevance,
		AppendNote:     "Also seen elsewhere",
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if expErr := mock.ExpectationsWereMet(); expErr != nil {
		t.Errorf("unmet expectations: %v", expErr)
	}
}

func TestContactRepository_Update_NotFound(t *testing.T) {
	repo, mock, cleanup := newContactRepo(t)
	defer cleanup()

	phone := "(202) 555-0100"

	mock.ExpectExec("UPDATE contacts SET").
		WithArgs(phone, "missing-id").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), "missing-id", &domain.Patch{Phone: &phone})
	if !errors.Is(err, store.ErrContactNotFound) {
		t.Errorf("Update() error = %v, want ErrContactNotFound", err)
	}
}

func TestContactRepository_Update_EmptyPatchIsNoOp(t *testing.T) {
	repo, mock, cleanup := newContactRepo(t)
	defer cleanup()

	if err := repo.Update(context.Background(), "contact-uuid-1", &domain.Patch{}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if expErr := mock.ExpectationsWereMet(); expErr != nil {
		t.Errorf("unexpected database call: %v", expErr)
	}
}

func TestContactRepository_CountActual(t *testing.T) {
	repo, mock, cleanup := newContactRepo(t)
	defer cleanup()

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM contacts").
		WithArgs("org-uuid-1", string(domain.ContactTypeActual)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := repo.CountActual(context.Background(), "org-uuid-1")
	if err != nil {
		t.Fatalf("CountActual() error = %v", err)
	}
	if count != 3 {
		t.Errorf("CountActual() = %d, want 3", count)
	}
}

func TestContactRepository_ListByOrganization(t *testing.T) {
	repo, mock, cleanup := newContactRepo(t)
	defer cleanup()

	now := time.Now()
	rows := sqlmock.NewRows(contactColumns).
		AddRow("contact-uuid-1", "org-uuid-1", "John", "Smith", "Director",
			"jsmith@city.gov", true, "", "table", "", 0.85, 9.0, "actual", "", now, now).
		AddRow("contact-uuid-2", "org-uuid-1", "Jane", "Doe", "Clerk",
			"", false, "", "card", "", 0.85, 6.0, "actual", "", now, now)

	mock.ExpectQuery("SELECT .+ FROM contacts WHERE organization_id").
		WithArgs("org-uuid-1").
		WillReturnRows(rows)

	contacts, err := repo.ListByOrganization(context.Background(), "org-uuid-1")
	if err != nil {
		t.Fatalf("ListByOrganization() error = %v", err)
	}
	if len(contacts) != 2 {
		t.Fatalf("ListByOrganization() returned %d contacts, want 2", len(contacts))
	}
	if contacts[0].JobTitle != "Director" {
		t.Errorf("contacts[0].JobTitle = %q", contacts[0].JobTitle)
	}
}
