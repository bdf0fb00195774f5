package apitest

import (
	"io"
	"net/http"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

func (s *Server) adminListBuses(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.JSON(http.StatusOK, s.buses)
}

// busFromForm applies the multipart fields to b. Missing fields are errors
// only when create is set.
func busFromForm(c *gin.Context, b *bus, create bool) gin.H {
	fieldErrors := gin.H{}
	text := map[string]*string{
		"bus_name":    &b.BusName,
		"number":      &b.Number,
		"origin":      &b.Origin,
		"destination": &b.Destination,
		"features":    &b.Features,
		"start_time":  &b.StartTime,
		"reach_time":  &b.ReachTime,
		"price":       &b.Price,
	}
	for name, dst := range text {
		v, ok := c.GetPostForm(name)
		if !ok {
			if create && name != "features" {
				fieldErrors[name] = []string{"This field is required."}
			}
			continue
		}
		*dst = v
	}

	if v, ok := c.GetPostForm("no_of_seats"); ok {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			fieldErrors["no_of_seats"] = []string{"A valid integer is required."}
		} else {
			b.NoOfSeats = n
		}
	} else if create {
		fieldErrors["no_of_seats"] = []string{"This field is required."}
	}

	if v, ok := c.GetPostForm("is_active"); ok {
		active, err := strconv.ParseBool(v)
		if err != nil {
			fieldErrors["is_active"] = []string{"Must be a valid boolean."}
		} else {
			b.IsActive = active
		}
	}
	return fieldErrors
}

func readImage(c *gin.Context) ([]byte, string, bool) {
	fh, err := c.FormFile("image")
	if err != nil {
		return nil, "", false
	}
	f, err := fh.Open()
	if err != nil {
		return nil, "", false
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, "", false
	}
	return data, "/media/buses/" + path.Base(fh.Filename), true
}

func requireMultipart(c *gin.Context) bool {
	if !strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		abortJSON(c, http.StatusUnsupportedMediaType, "Expected multipart form data")
		return false
	}
	return true
}

func (s *Server) adminCreateBus(c *gin.Context) {
	if !requireMultipart(c) {
		return
	}
	b := &bus{IsActive: true}
	if fieldErrors := busFromForm(c, b, true); len(fieldErrors) > 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, fieldErrors)
		return
	}
	image, imagePath, hasImage := readImage(c)

	s.mu.Lock()
	defer s.mu.Unlock()

	b.ID = s.id()
	if hasImage {
		b.Image = &imagePath
		s.busImages[b.ID] = image
	}
	s.addSeatsLocked(b, b.NoOfSeats)
	s.buses = append(s.buses, b)
	c.JSON(http.StatusCreated, b)
}

func (s *Server) adminUpdateBus(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok || !requireMultipart(c) {
		return
	}
	image, imagePath, hasImage := readImage(c)

	s.mu.Lock()
	defer s.mu.Unlock()

	b := s.findBus(id)
	if b == nil {
		notFound(c)
		return
	}
	updated := *b
	if fieldErrors := busFromForm(c, &updated, false); len(fieldErrors) > 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, fieldErrors)
		return
	}
	if hasImage {
		updated.Image = &imagePath
		s.busImages[b.ID] = image
	}
	*b = updated
	c.JSON(http.StatusOK, b)
}

func (s *Server) adminDeleteBus(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, b := range s.buses {
		if b.ID != id {
			continue
		}
		s.buses = append(s.buses[:i], s.buses[i+1:]...)
		kept := s.bookings[:0]
		for _, bk := range s.bookings {
			if bk.BusID == id {
				delete(s.tickets, bk.ID)
				continue
			}
			kept = append(kept, bk)
		}
		s.bookings = kept
		c.Status(http.StatusNoContent)
		return
	}
	notFound(c)
}

func (s *Server) totalBookings(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"total_bookings": len(s.bookings)})
}

func (s *Server) totalRevenue(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var paise int
	for _, p := range s.payments {
		if p.Status == "SUCCESS" {
			paise += p.Amount
		}
	}
	c.JSON(http.StatusOK, gin.H{"total_revenue": float64(paise) / 100})
}

func (s *Server) activeBuses(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	active := 0
	for _, b := range s.buses {
		if b.IsActive {
			active++
		}
	}
	c.JSON(http.StatusOK, gin.H{"active_buses": active})
}

func (s *Server) recentBookings(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	recent := append([]*booking(nil), s.bookings...)
	sort.SliceStable(recent, func(i, j int) bool { return recent[i].BookedAt.After(recent[j].BookedAt) })
	if len(recent) > 10 {
		recent = recent[:10]
	}

	out := make([]gin.H, 0, len(recent))
	for _, bk := range recent {
		row := gin.H{"id": bk.ID, "journey_date": bk.JourneyDate}
		if u := s.usersByID[bk.UserID]; u != nil {
			row["username"] = u.Username
		}
		if b := s.findBus(bk.BusID); b != nil {
			row["bus_name"] = b.BusName
			row["origin"] = b.Origin
			row["destination"] = b.Destination
		}
		if _, st := s.findSeat(bk.SeatID); st != nil {
			row["seat_number"] = st.SeatNumber
		}
		out = append(out, row)
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) verifyTicket(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	t, bk := s.findTicket(id)
	if t == nil || bk == nil {
		abortJSON(c, http.StatusNotFound, "Invalid ticket")
		return
	}
	out := gin.H{"ticket_id": t.ID, "status": t.Status, "journey_date": bk.JourneyDate}
	if u := s.usersByID[bk.UserID]; u != nil {
		out["passenger"] = u.Username
	}
	if b := s.findBus(bk.BusID); b != nil {
		out["bus"] = b.BusName
		out["route"] = b.Origin + " → " + b.Destination
	}
	if _, st := s.findSeat(bk.SeatID); st != nil {
		out["seat"] = st.SeatNumber
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) markTicketUsed(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	t, _ := s.findTicket(id)
	if t == nil {
		abortJSON(c, http.StatusNotFound, "Invalid ticket")
		return
	}
	if t.Status != "ACTIVE" {
		abortJSON(c, http.StatusBadRequest, "Ticket already "+strings.ToLower(t.Status))
		return
	}
	t.Status = "USED"
	c.JSON(http.StatusOK, gin.H{"message": "Ticket marked as USED"})
}
