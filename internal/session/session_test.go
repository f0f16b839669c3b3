package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestIssueAndVerify(t *testing.T) {
	m := NewManager(testSecret)

	token, err := m.Issue("user_1")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	identity, err := m.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if identity.UserID != "user_1" {
		t.Errorf("Verify() UserID = %v, want user_1", identity.UserID)
	}
}

func TestVerifyRejectsTamperedToken(t *testing.T) {
	m := NewManager(testSecret)
	other := NewManager("ffffffffffffffffffffffffffffffff")

	token, err := other.Issue("user_1")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	if _, err := m.Verify(token); err == nil {
		t.Error("Verify() should reject token signed with a different secret")
	}

	if _, err := m.Verify("not.a.token"); err == nil {
		t.Error("Verify() should reject garbage input")
	}
}

func TestDisabledManagerIsAnonymous(t *testing.T) {
	m := NewManager("")

	if m.Enabled() {
		t.Error("manager without secret should be disabled")
	}
	if _, err := m.Issue("user_1"); err == nil {
		t.Error("Issue() should fail when sessions are disabled")
	}

	identity, err := m.Verify("anything")
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if identity.UserID != AnonymousUser {
		t.Errorf("Verify() UserID = %v, want %v", identity.UserID, AnonymousUser)
	}
}

func TestMiddleware(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := FromContext(r.Context())
		if !ok {
			t.Error("identity missing from request context")
		}
		w.Write([]byte(identity.UserID))
	})

	t.Run("anonymous mode passes everyone through", func(t *testing.T) {
		m := NewManager("")
		rec := httptest.NewRecorder()
		m.Middleware(handler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if rec.Body.String() != AnonymousUser {
			t.Errorf("identity = %q, want %q", rec.Body.String(), AnonymousUser)
		}
	})

	t.Run("missing token rejected", func(t *testing.T) {
		m := NewManager(testSecret)
		rec := httptest.NewRecorder()
		m.Middleware(handler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("valid cookie accepted", func(t *testing.T) {
		m := NewManager(testSecret)
		token, err := m.Issue("user_7")
		if err != nil {
			t.Fatalf("Issue() error = %v", err)
		}

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: CookieName, Value: token})
		rec := httptest.NewRecorder()
		m.Middleware(handler).ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if rec.Body.String() != "user_7" {
			t.Errorf("identity = %q, want user_7", rec.Body.String())
		}
	})

	t.Run("bearer header accepted", func(t *testing.T) {
		m := NewManager(testSecret)
		token, _ := m.Issue("user_8")

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		m.Middleware(handler).ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if rec.Body.String() != "user_8" {
			t.Errorf("identity = %q, want user_8", rec.Body.String())
		}
	})
}
