package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"

	"github.com/userrank/server/internal/durability"
	"github.com/userrank/server/internal/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// uidQueryPattern restricts the uid query parameter to one or more digits
// and nothing else. A query that doesn't match falls through to the
// "Bad GET" fallback, as if no route handled the path.
var uidQueryPattern = regexp.MustCompile(`^[0-9]+$`)

type handlers struct {
	store *store.UserStore
	log   *zap.Logger

	// durability is optional; nil disables write-behind logging entirely.
	durability *durability.Writer
}

func newHandlers(s *store.UserStore, log *zap.Logger, dw *durability.Writer) *handlers {
	return &handlers{store: s, log: log.Named("handlers"), durability: dw}
}

// parseUIDQuery extracts and validates the "uid" query parameter. ok is
// false if the path should fall through to the Bad GET handler (missing,
// non-numeric, or out of uint32 range uid).
func parseUIDQuery(c *gin.Context) (uint32, bool) {
	raw := c.Query("uid")
	if raw == "" || !uidQueryPattern.MatchString(raw) {
		return 0, false
	}
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint32(v), true
}

func notExistBody(uid uint32) string {
	return fmt.Sprintf("User %d doesn't exist.", uid)
}

// handleInfo implements GET /info?uid=<n>.
func (h *handlers) handleInfo(c *gin.Context) {
	uid, ok := parseUIDQuery(c)
	if !ok {
		h.handleBadGet(c)
		return
	}

	rec, err := h.store.Get(uid)
	if err != nil {
		c.String(http.StatusOK, notExistBody(uid))
		return
	}

	// Tab-separated field dump: uid, name, exp_pers, active, exp_gang.
	c.String(http.StatusOK, "%d\t%s\t%d\t%d\t%d\n", rec.UID, rec.Name, rec.ExpPers, rec.Active, rec.ExpGang)
}

// handlePut implements POST /put.
func (h *handlers) handlePut(c *gin.Context) {
	req, err := ParsePutRequest(c.Request.Body)
	if err != nil {
		if errors.Is(err, ErrBadParam) {
			c.String(http.StatusOK, "Bad Param")
			return
		}
		c.String(http.StatusOK, "Bad Put")
		return
	}

	rec := &store.Record{
		UID:     req.UID,
		Name:    req.Name,
		ExpPers: req.ExpPers,
		Active:  req.Active,
		ExpGang: req.ExpGang,
	}
	if err := h.store.Put(rec); err != nil {
		h.log.Info("put rejected", zap.Uint32("uid", rec.UID), zap.Error(err))
		c.String(http.StatusOK, "Bad Put")
		return
	}

	if h.durability != nil {
		h.durability.Append(c.Request.Context(), durability.Entry{
			Op:      "put",
			UID:     rec.UID,
			Name:    rec.Name,
			ExpPers: rec.ExpPers,
			Active:  rec.Active,
			ExpGang: rec.ExpGang,
		})
	}

	c.String(http.StatusOK, "Put Successfully")
}

// handleRemove implements GET /remove?uid=<n>.
func (h *handlers) handleRemove(c *gin.Context) {
	uid, ok := parseUIDQuery(c)
	if !ok {
		h.handleBadGet(c)
		return
	}

	if err := h.store.Erase(uid); err != nil {
		c.String(http.StatusOK, notExistBody(uid))
		return
	}

	if h.durability != nil {
		h.durability.Append(c.Request.Context(), durability.Entry{Op: "erase", UID: uid})
	}

	c.String(http.StatusOK, "Remove Successfully")
}

// rankHandler builds a GET /get_<view>?uid=<n> handler for viewName,
// responding with "<label> Rank: <n>".
func (h *handlers) rankHandler(viewName, label string) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, ok := parseUIDQuery(c)
		if !ok {
			h.handleBadGet(c)
			return
		}

		rank, err := h.store.Rank(viewName, uid)
		if err != nil {
			c.String(http.StatusOK, notExistBody(uid))
			return
		}
		c.String(http.StatusOK, "%s Rank: %d", label, rank)
	}
}

func (h *handlers) handleBadGet(c *gin.Context) {
	c.String(http.StatusOK, "<h1>Bad GET</h1>")
}

func (h *handlers) handleOptions(c *gin.Context) {
	c.String(http.StatusOK, "<h1>OPTIONS</h1>")
}
