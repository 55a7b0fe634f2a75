package handlers

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"

	"networth/internal/config"
	"networth/internal/security"
)

type recordingMailer struct {
	calls int
	to    string
	body  string
	err   error
}

func (m *recordingMailer) Send(to string, subject string, body string) error {
	m.calls++
	m.to = to
	m.body = body
	return m.err
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:           "dev",
		JWTExpiresInSeconds: 3600,
		AppBaseURL:          "http://localhost:3000",
		HomeCurrency:        "USD",
	}
}

func postJSON(t *testing.T, h http.HandlerFunc, target string, payload map[string]any) *httptest.ResponseRecorder {
	t.Helper()
	b, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, target, bytes.NewReader(b))
	w := httptest.NewRecorder()
	h(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v (%s)", err, w.Body.String())
	}
	return resp
}

const selectUserByEmail = `SELECT id, email, mobile, password_hash, country, currency, created_at\s+FROM users\s+WHERE email = \$1`

func userRows(hash string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "email", "mobile", "password_hash", "country", "currency", "created_at"}).
		AddRow("u1", "a@b.com", nil, hash, "US", "USD", time.Now().UTC())
}

func TestRegisterSuccess(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(selectUserByEmail).WithArgs("a@b.com").WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery("INSERT INTO users").WillReturnRows(
		sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now().UTC()),
	)

	h := NewAuthHandler(db, testConfig(), &recordingMailer{})
	w := postJSON(t, h.Register, "/api/v1/auth/register", map[string]any{
		"email":    "a@b.com",
		"password": "secret1",
	})

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d (%s)", w.Code, w.Body.String())
	}
	resp := decodeBody(t, w)
	if resp["message"] != "User created successfully" {
		t.Fatalf("unexpected body %v", resp)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestRegisterValidationLadder(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	h := NewAuthHandler(db, testConfig(), &recordingMailer{})

	w := postJSON(t, h.Register, "/api/v1/auth/register", map[string]any{"email": "a@b.com"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing password: expected 400 got %d", w.Code)
	}
	if resp := decodeBody(t, w); resp["error"] != "Email and password are required" {
		t.Fatalf("unexpected error %v", resp)
	}

	w = postJSON(t, h.Register, "/api/v1/auth/register", map[string]any{"email": "a@b.com", "password": "short"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("short password: expected 400 got %d", w.Code)
	}
	if resp := decodeBody(t, w); resp["error"] != "Password must be at least 6 characters" {
		t.Fatalf("unexpected error %v", resp)
	}
}

func TestRegisterDuplicateEmailIsCaseInsensitive(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	// "A@B.com" is folded before lookup, so the existing "a@b.com" row hits.
	mock.ExpectQuery(selectUserByEmail).WithArgs("a@b.com").WillReturnRows(userRows("hash"))

	h := NewAuthHandler(db, testConfig(), &recordingMailer{})
	w := postJSON(t, h.Register, "/api/v1/auth/register", map[string]any{
		"email":    "A@B.com",
		"password": "secret1",
	})

	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d (%s)", w.Code, w.Body.String())
	}
	if resp := decodeBody(t, w); resp["error"] != "Email already registered" {
		t.Fatalf("unexpected error %v", resp)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestRegisterRacedDuplicateMapsTo409(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(selectUserByEmail).WithArgs("a@b.com").WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery("INSERT INTO users").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "users_email_key"})

	h := NewAuthHandler(db, testConfig(), &recordingMailer{})
	w := postJSON(t, h.Register, "/api/v1/auth/register", map[string]any{
		"email":    "a@b.com",
		"password": "secret1",
	})

	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d (%s)", w.Code, w.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestLoginSuccess(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	hash, err := security.HashPassword("secret1")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	mock.ExpectQuery(selectUserByEmail).WithArgs("a@b.com").WillReturnRows(userRows(hash))

	h := NewAuthHandler(db, testConfig(), &recordingMailer{})
	w := postJSON(t, h.Login, "/api/v1/auth/login", map[string]any{
		"email":    "a@b.com",
		"password": "secret1",
	})

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d (%s)", w.Code, w.Body.String())
	}
	resp := decodeBody(t, w)
	if resp["access_token"] == nil {
		t.Fatalf("expected access_token, got %v", resp)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestLoginWrongPasswordAndUnknownEmailLookAlike(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	hash, _ := security.HashPassword("secret1")
	mock.ExpectQuery(selectUserByEmail).WithArgs("a@b.com").WillReturnRows(userRows(hash))
	mock.ExpectQuery(selectUserByEmail).WithArgs("nobody@b.com").WillReturnError(sql.ErrNoRows)

	h := NewAuthHandler(db, testConfig(), &recordingMailer{})

	wrong := postJSON(t, h.Login, "/api/v1/auth/login", map[string]any{"email": "a@b.com", "password": "nope00"})
	unknown := postJSON(t, h.Login, "/api/v1/auth/login", map[string]any{"email": "nobody@b.com", "password": "nope00"})

	if wrong.Code != http.StatusUnauthorized || unknown.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401/401 got %d/%d", wrong.Code, unknown.Code)
	}
	if wrong.Body.String() != unknown.Body.String() {
		t.Fatalf("responses must not differ: %q vs %q", wrong.Body.String(), unknown.Body.String())
	}
}

func TestForgotPasswordUnknownEmailStaysGeneric(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(selectUserByEmail).WithArgs("ghost@b.com").WillReturnError(sql.ErrNoRows)

	mailer := &recordingMailer{}
	h := NewAuthHandler(db, testConfig(), mailer)
	w := postJSON(t, h.ForgotPassword, "/api/v1/auth/forgot-password", map[string]any{"email": "ghost@b.com"})

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d (%s)", w.Code, w.Body.String())
	}
	if resp := decodeBody(t, w); resp["message"] != resetLinkSentMessage {
		t.Fatalf("unexpected body %v", resp)
	}
	if mailer.calls != 0 {
		t.Fatalf("mailer must not be called for unknown emails, got %d calls", mailer.calls)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestForgotPasswordIssuesTokenAndSupersedesOldOnes(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(selectUserByEmail).WithArgs("a@b.com").WillReturnRows(userRows("hash"))
	// Older unused tokens are retired before the new one is written.
	mock.ExpectExec(`UPDATE password_reset_tokens SET used = TRUE WHERE user_id = \$1 AND used = FALSE`).
		WithArgs("u1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("INSERT INTO password_reset_tokens").WillReturnRows(
		sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now().UTC()),
	)

	mailer := &recordingMailer{}
	h := NewAuthHandler(db, testConfig(), mailer)
	w := postJSON(t, h.ForgotPassword, "/api/v1/auth/forgot-password", map[string]any{"email": "a@b.com"})

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d (%s)", w.Code, w.Body.String())
	}
	if mailer.calls != 1 {
		t.Fatalf("expected one mail, got %d", mailer.calls)
	}
	if mailer.to != "a@b.com" {
		t.Fatalf("mail to = %q", mailer.to)
	}
	if !strings.Contains(mailer.body, "http://localhost:3000/reset-password?token=") {
		t.Fatalf("mail body missing reset link: %q", mailer.body)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestForgotPasswordMissingEmail(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	h := NewAuthHandler(db, testConfig(), &recordingMailer{})
	w := postJSON(t, h.ForgotPassword, "/api/v1/auth/forgot-password", map[string]any{})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", w.Code)
	}

	w = postJSON(t, h.ForgotPassword, "/api/v1/auth/forgot-password", map[string]any{"email": "not-an-email"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("malformed email: expected 400 got %d", w.Code)
	}
}

const selectResetToken = `SELECT id, token, user_id, expires_at, used, created_at\s+FROM password_reset_tokens\s+WHERE token = \$1`

func tokenRows(used bool, expiresAt time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "token", "user_id", "expires_at", "used", "created_at"}).
		AddRow("t1", "rawtoken", "u1", expiresAt, used, time.Now().UTC())
}

func TestResetPasswordValidation(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	h := NewAuthHandler(db, testConfig(), &recordingMailer{})

	w := postJSON(t, h.ResetPassword, "/api/v1/auth/reset-password", map[string]any{"token": "x"})
	if resp := decodeBody(t, w); w.Code != http.StatusBadRequest || resp["error"] != "Token and password are required" {
		t.Fatalf("got %d %v", w.Code, resp)
	}

	w = postJSON(t, h.ResetPassword, "/api/v1/auth/reset-password", map[string]any{"token": "x", "password": "tiny"})
	if resp := decodeBody(t, w); w.Code != http.StatusBadRequest || resp["error"] != "Password must be at least 6 characters" {
		t.Fatalf("got %d %v", w.Code, resp)
	}
}

func TestResetPasswordUnknownToken(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(selectResetToken).WithArgs("nope").WillReturnError(sql.ErrNoRows)

	h := NewAuthHandler(db, testConfig(), &recordingMailer{})
	w := postJSON(t, h.ResetPassword, "/api/v1/auth/reset-password", map[string]any{"token": "nope", "password": "secret1"})

	if resp := decodeBody(t, w); w.Code != http.StatusBadRequest || resp["error"] != "Invalid or expired reset link" {
		t.Fatalf("got %d %v", w.Code, resp)
	}
}

func TestResetPasswordUsedToken(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(selectResetToken).WithArgs("rawtoken").
		WillReturnRows(tokenRows(true, time.Now().UTC().Add(time.Hour)))

	h := NewAuthHandler(db, testConfig(), &recordingMailer{})
	w := postJSON(t, h.ResetPassword, "/api/v1/auth/reset-password", map[string]any{"token": "rawtoken", "password": "secret1"})

	if resp := decodeBody(t, w); w.Code != http.StatusBadRequest || resp["error"] != "This reset link has already been used" {
		t.Fatalf("got %d %v", w.Code, resp)
	}
	// No password was written.
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestResetPasswordExpiredToken(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(selectResetToken).WithArgs("rawtoken").
		WillReturnRows(tokenRows(false, time.Now().UTC().Add(-time.Minute)))

	h := NewAuthHandler(db, testConfig(), &recordingMailer{})
	w := postJSON(t, h.ResetPassword, "/api/v1/auth/reset-password", map[string]any{"token": "rawtoken", "password": "secret1"})

	if resp := decodeBody(t, w); w.Code != http.StatusBadRequest || resp["error"] != "This reset link has expired. Please request a new one." {
		t.Fatalf("got %d %v", w.Code, resp)
	}
}

func TestResetPasswordSuccessConsumesInOneTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(selectResetToken).WithArgs("rawtoken").
		WillReturnRows(tokenRows(false, time.Now().UTC().Add(30*time.Minute)))
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE users SET password_hash = \$1 WHERE id = \$2`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE password_reset_tokens SET used = TRUE WHERE id = \$1 AND used = FALSE`).
		WithArgs("t1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	h := NewAuthHandler(db, testConfig(), &recordingMailer{})
	w := postJSON(t, h.ResetPassword, "/api/v1/auth/reset-password", map[string]any{"token": "rawtoken", "password": "secret1"})

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d (%s)", w.Code, w.Body.String())
	}
	if resp := decodeBody(t, w); resp["message"] != "Password reset successfully" {
		t.Fatalf("unexpected body %v", resp)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestResetPasswordRacedConsumptionRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	// The token looked live at read time but another request consumed it
	// first; the conditional update sees zero rows and the tx rolls back.
	mock.ExpectQuery(selectResetToken).WithArgs("rawtoken").
		WillReturnRows(tokenRows(false, time.Now().UTC().Add(30*time.Minute)))
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE users SET password_hash`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE password_reset_tokens SET used = TRUE WHERE id = \$1 AND used = FALSE`).
		WithArgs("t1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	h := NewAuthHandler(db, testConfig(), &recordingMailer{})
	w := postJSON(t, h.ResetPassword, "/api/v1/auth/reset-password", map[string]any{"token": "rawtoken", "password": "secret1"})

	if resp := decodeBody(t, w); w.Code != http.StatusBadRequest || resp["error"] != "This reset link has already been used" {
		t.Fatalf("got %d %v", w.Code, resp)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
