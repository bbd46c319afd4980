package handler

import (
	"net/http"
	"strconv"

	"github.com/garrettladley/whoopsync/internal/identity"
	"github.com/garrettladley/whoopsync/internal/oauth"
	"github.com/garrettladley/whoopsync/internal/repository"
	"github.com/garrettladley/whoopsync/internal/validator"
	"github.com/garrettladley/whoopsync/internal/xerrors"
	"github.com/garrettladley/whoopsync/internal/xhttp"
	"github.com/garrettladley/whoopsync/internal/xsync"
)

type Profile struct {
	identity identity.Provider
	syncer   xsync.Syncer
	records  repository.RecordRepository
}

func NewProfile(provider identity.Provider, syncer xsync.Syncer, records repository.RecordRepository) *Profile {
	return &Profile{
		identity: provider,
		syncer:   syncer,
		records:  records,
	}
}

type profileQuery struct {
	rawLimit string
	limit    int
}

func (q *profileQuery) Validate() map[string]string {
	q.limit = repository.DefaultRecentLimit
	if q.rawLimit == "" {
		return nil
	}

	limit, err := strconv.Atoi(q.rawLimit)
	if err != nil || limit < 1 || limit > repository.MaxRecentLimit {
		return map[string]string{
			"limit": "must be an integer between 1 and " + strconv.Itoa(repository.MaxRecentLimit),
		}
	}
	q.limit = limit
	return nil
}

type profileResponse struct {
	UserID  string              `json:"user_id"`
	Synced  bool                `json:"synced"`
	Records []repository.Record `json:"records"`
}

// HandleProfile handles GET /profile requests.
func (h *Profile) HandleProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := h.identity.CurrentUserID(ctx)
	if !ok {
		redirectWithError(w, r, oauth.ErrorCodeNotLoggedIn, "")
		return
	}

	query := &profileQuery{rawLimit: r.URL.Query().Get("limit")}
	if err := validator.Validate(query); err != nil {
		xerrors.WriteError(ctx, w, err)
		return
	}

	synced := h.syncer.SyncUser(ctx, userID)

	records, err := h.records.ListRecent(ctx, userID, query.limit)
	if err != nil {
		xerrors.WriteError(ctx, w, xerrors.Internal(
			xerrors.WithMessage("failed to load records"),
			xerrors.WithCause(err),
		))
		return
	}
	if records == nil {
		records = []repository.Record{}
	}

	xhttp.WriteOK(w, profileResponse{
		UserID:  userID,
		Synced:  synced,
		Records: records,
	})
}
