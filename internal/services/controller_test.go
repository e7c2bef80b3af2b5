package services

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Riboost-Studio/voucher-print/internal/model"
)

const sessionCookie = "unifises"

// fakeController serves the subset of the controller API the client uses.
type fakeController struct {
	*httptest.Server
	vouchers    string
	fetchStatus int
	loginDelay  time.Duration

	logins  atomic.Int32
	fetches atomic.Int32
	logouts atomic.Int32
	site    atomic.Value
}

func newFakeController(t *testing.T, vouchers string) *fakeController {
	t.Helper()
	fc := &fakeController{vouchers: vouchers, fetchStatus: http.StatusOK}
	fc.Server = httptest.NewServer(fc.handler())
	t.Cleanup(fc.Close)
	return fc
}

func newFakeTLSController(t *testing.T, vouchers string) *fakeController {
	t.Helper()
	fc := &fakeController{vouchers: vouchers, fetchStatus: http.StatusOK}
	fc.Server = httptest.NewTLSServer(fc.handler())
	t.Cleanup(fc.Close)
	return fc
}

func (fc *fakeController) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/login", func(w http.ResponseWriter, r *http.Request) {
		fc.logins.Add(1)
		if fc.loginDelay > 0 {
			time.Sleep(fc.loginDelay)
		}
		var creds model.Credentials
		if err := json.NewDecoder(r.Body).Decode(&creds); err != nil || creds.Username != "admin" || creds.Password != "secret" {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"meta":{"rc":"error","msg":"api.err.Invalid"},"data":[]}`))
			return
		}
		http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: "token", Path: "/"})
		w.Write([]byte(`{"meta":{"rc":"ok"},"data":[]}`))
	})

	mux.HandleFunc("GET /api/s/{site}/stat/voucher", func(w http.ResponseWriter, r *http.Request) {
		fc.fetches.Add(1)
		fc.site.Store(r.PathValue("site"))
		if c, err := r.Cookie(sessionCookie); err != nil || c.Value != "token" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"meta":{"rc":"error","msg":"api.err.LoginRequired"},"data":[]}`))
			return
		}
		w.WriteHeader(fc.fetchStatus)
		w.Write([]byte(fc.vouchers))
	})

	mux.HandleFunc("POST /api/logout", func(w http.ResponseWriter, r *http.Request) {
		fc.logouts.Add(1)
		w.Write([]byte(`{"meta":{"rc":"ok"},"data":[]}`))
	})

	return mux
}

func (fc *fakeController) lastSite() string {
	s, _ := fc.site.Load().(string)
	return s
}

const threeVouchers = `{"meta":{"rc":"ok"},"data":[
	{"_id":"1","code":"1111111111","duration":1440,"used":0,"quota":1},
	{"_id":"2","code":"2222222222","duration":2880,"used":1,"quota":1},
	{"_id":"3","code":"3333333333","duration":4320,"used":0,"quota":1}
]}`

var adminCreds = model.Credentials{Username: "admin", Password: "secret"}
