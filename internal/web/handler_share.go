package web

import (
	"net/http"
)

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := s.shares.Profile(r.Context())
	if err != nil {
		s.fail(w, r, err, "get profile")
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (s *Server) handleSetProfile(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	profile, err := s.shares.SetProfile(r.Context(), req.Name)
	if err != nil {
		s.fail(w, r, err, "set profile")
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (s *Server) handleListContacts(w http.ResponseWriter, r *http.Request) {
	contacts, err := s.shares.ListContacts(r.Context())
	if err != nil {
		s.fail(w, r, err, "list contacts")
		return
	}
	writeJSON(w, http.StatusOK, nonNil(contacts))
}

func (s *Server) handleAddContact(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name  string `json:"name"`
		Phone string `json:"phone"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	contact, err := s.shares.AddContact(r.Context(), req.Name, req.Phone)
	if err != nil {
		s.fail(w, r, err, "add contact")
		return
	}
	writeJSON(w, http.StatusCreated, contact)
}

func (s *Server) handleDeleteContact(w http.ResponseWriter, r *http.Request) {
	if err := s.shares.DeleteContact(r.Context(), r.PathValue("id")); err != nil {
		s.fail(w, r, err, "delete contact")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleShare(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PhotoIDs    []string `json:"photo_ids"`
		ContactName string   `json:"contact_name"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := s.shares.Share(r.Context(), req.PhotoIDs, req.ContactName)
	if err != nil {
		s.fail(w, r, err, "share photos")
		return
	}

	if s.metrics != nil {
		s.metrics.SharesCreated.Inc()
		s.metrics.PhotosShared.Add(float64(result.ShareRecord.PhotoCount))
	}
	writeJSON(w, http.StatusCreated, result)
}

func (s *Server) handleListShares(w http.ResponseWriter, r *http.Request) {
	shares, err := s.shares.AllShares(r.Context())
	if err != nil {
		s.fail(w, r, err, "list shares")
		return
	}
	writeJSON(w, http.StatusOK, nonNil(shares))
}

func (s *Server) handleShareHistory(w http.ResponseWriter, r *http.Request) {
	shares, err := s.shares.History(r.Context())
	if err != nil {
		s.fail(w, r, err, "share history")
		return
	}
	writeJSON(w, http.StatusOK, nonNil(shares))
}

func (s *Server) handleSentShares(w http.ResponseWriter, r *http.Request) {
	shares, err := s.shares.SentShares(r.Context())
	if err != nil {
		s.fail(w, r, err, "sent shares")
		return
	}
	writeJSON(w, http.StatusOK, nonNil(shares))
}

func (s *Server) handleReceivedByMe(w http.ResponseWriter, r *http.Request) {
	shares, err := s.shares.ReceivedByMe(r.Context())
	if err != nil {
		s.fail(w, r, err, "received shares")
		return
	}
	writeJSON(w, http.StatusOK, nonNil(shares))
}

func (s *Server) handleReceivedShares(w http.ResponseWriter, r *http.Request) {
	shares, err := s.shares.ReceivedShares(r.Context())
	if err != nil {
		s.fail(w, r, err, "received shares")
		return
	}
	writeJSON(w, http.StatusOK, nonNil(shares))
}

func (s *Server) handleSharedWithContact(w http.ResponseWriter, r *http.Request) {
	photos, err := s.shares.PhotosSharedWith(r.Context(), r.PathValue("name"))
	if err != nil {
		s.fail(w, r, err, "photos shared with contact")
		return
	}
	writeJSON(w, http.StatusOK, nonNil(photos))
}

func (s *Server) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	if err := s.shares.MarkRead(r.Context(), r.PathValue("id")); err != nil {
		s.fail(w, r, err, "mark share read")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "read"})
}
