// internal/bot/handlers_test.go
package bot

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"property-report-bot/internal/common/errors"
	"property-report-bot/internal/common/logger"
	"property-report-bot/internal/common/observability"
	"property-report-bot/internal/models"
)

type stubFetcher struct {
	properties []models.Record
	listing    []models.Record
	complaints map[string][]models.Record

	fetchErr      error
	complaintsErr error
}

func (s *stubFetcher) FetchAllProperties(context.Context) ([]models.Record, error) {
	return s.properties, s.fetchErr
}

func (s *stubFetcher) FetchPropertiesList(context.Context) ([]models.Record, error) {
	if s.listing != nil {
		return s.listing, s.fetchErr
	}
	return s.properties, s.fetchErr
}

func (s *stubFetcher) FetchPropertyByID(_ context.Context, propertyID string) (models.Record, error) {
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	for _, p := range s.properties {
		if p.StringField("", "id") == propertyID {
			return p, nil
		}
	}
	return nil, errors.NewPropertyNotFoundError(propertyID)
}

func (s *stubFetcher) FetchComplaints(_ context.Context, propertyID string) ([]models.Record, error) {
	if s.complaintsErr != nil {
		return nil, s.complaintsErr
	}
	return s.complaints[propertyID], nil
}

func newTestService(t *testing.T, fetcher *stubFetcher) *Service {
	t.Helper()
	return NewService(fetcher, &observability.Observability{}, logger.NewTestLogger(t))
}

func sampleProperties() []models.Record {
	return []models.Record{
		{"id": "1", "name": "Villa", "airbnb_rating": 4.5, "booking_rating": 5.0},
		{"id": "2", "name": "Cabin", "airbnb": 3.0, "location": "Alps"},
		{"id": "3", "name": "Flat", "booking_rating": "4.2"},
	}
}

func TestStart_ShowsWelcomeMenu(t *testing.T) {
	svc := newTestService(t, &stubFetcher{})

	reply := svc.Start()
	require.NotNil(t, reply.Menu)
	assert.Contains(t, reply.Menu.Text, "👋 Welcome to the Property Management Bot!")
	require.Len(t, reply.Menu.Rows, 3)
	assert.Equal(t, "action_top5", reply.Menu.Rows[0][0].Data)
	assert.Equal(t, "action_complaints_help", reply.Menu.Rows[2][1].Data)
}

func TestMenu(t *testing.T) {
	svc := newTestService(t, &stubFetcher{})

	reply := svc.Menu()
	require.NotNil(t, reply.Menu)
	assert.Contains(t, reply.Menu.Text, "📌 Main Menu")
}

func TestRatings(t *testing.T) {
	svc := newTestService(t, &stubFetcher{properties: sampleProperties()})

	reply, err := svc.Ratings(context.Background())
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "🏡 Property Ratings")
	assert.Contains(t, reply.Text, "Villa")
	assert.Contains(t, reply.Text, "Cabin")
	assert.Contains(t, reply.Text, "Flat")
}

func TestRatings_EmptyAndFailedFetchDegradeTheSameWay(t *testing.T) {
	empty := newTestService(t, &stubFetcher{})
	reply, err := empty.Ratings(context.Background())
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "No property data available")

	failing := newTestService(t, &stubFetcher{
		fetchErr: errors.NewFetchTransportFailedError("http://x", fmt.Errorf("refused")),
	})
	reply, err = failing.Ratings(context.Background())
	require.Error(t, err)
	assert.Contains(t, reply.Text, "No property data available")
}

func TestTop_TextAndChart(t *testing.T) {
	svc := newTestService(t, &stubFetcher{properties: sampleProperties()})

	reply, err := svc.Top(context.Background(), 5)
	require.NoError(t, err)

	assert.Contains(t, reply.Text, "🏆 Top 3 Best Rated Properties")
	assert.Contains(t, reply.Text, "🥇 Villa")

	require.NotEmpty(t, reply.Image)
	_, decodeErr := png.Decode(bytes.NewReader(reply.Image))
	require.NoError(t, decodeErr)
	assert.Equal(t, "ratings_chart.png", reply.ImageName)
	assert.Equal(t, "📊 Top 3 Properties Rating Chart", reply.ImageCaption)
}

func TestTop_TwentyCapsAtAvailable(t *testing.T) {
	svc := newTestService(t, &stubFetcher{properties: sampleProperties()})

	reply, err := svc.Top(context.Background(), 20)
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "Top 3 Best Rated Properties")
}

func TestProperties_UsesListingEndpoint(t *testing.T) {
	svc := newTestService(t, &stubFetcher{
		listing: []models.Record{{"id": "9", "name": "Loft", "location": "Porto"}},
	})

	reply, err := svc.Properties(context.Background())
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "🏠 Properties List")
	assert.Contains(t, reply.Text, "🏠 [9] Loft - Porto")
	assert.Contains(t, reply.Text, "💡 Use /property <id> for details")
}

func TestProperty(t *testing.T) {
	svc := newTestService(t, &stubFetcher{properties: sampleProperties()})

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing argument shows usage", nil, "Usage: /property <id>"},
		{"blank argument shows usage", []string{"  "}, "Usage: /property <id>"},
		{"known id shows details", []string{"1"}, "🏠 Villa (id: 1)"},
		{"unknown id", []string{"404"}, "Property with id 404 not found."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reply, err := svc.Property(context.Background(), tt.args)
			require.NoError(t, err)
			assert.Contains(t, reply.Text, tt.want)
		})
	}
}

func TestComplaints(t *testing.T) {
	fetcher := &stubFetcher{
		properties: sampleProperties(),
		complaints: map[string][]models.Record{
			"1": {
				{"id": "c1", "title": "Noise", "status": "open", "description": "Loud"},
			},
		},
	}
	svc := newTestService(t, fetcher)

	reply, err := svc.Complaints(context.Background(), []string{"1"})
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "📋 Complaints for Villa (id: 1)")
	assert.Contains(t, reply.Text, "Total: 1 complaint(s)")
	assert.Contains(t, reply.Text, "📋 Complaint #c1: Noise")
}

func TestComplaints_VerifiesPropertyFirst(t *testing.T) {
	svc := newTestService(t, &stubFetcher{properties: sampleProperties()})

	reply, err := svc.Complaints(context.Background(), []string{"404"})
	require.NoError(t, err)
	assert.Equal(t, "Property with id 404 not found.", reply.Text)
}

func TestComplaints_UsageAndNotConfigured(t *testing.T) {
	svc := newTestService(t, &stubFetcher{properties: sampleProperties()})
	reply, err := svc.Complaints(context.Background(), nil)
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "Usage: /complaints <property_id>")

	unconfigured := newTestService(t, &stubFetcher{
		properties:    sampleProperties(),
		complaintsErr: errors.NewComplaintsNotConfiguredError(),
	})
	reply, err = unconfigured.Complaints(context.Background(), []string{"1"})
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "Complaints feature is not configured.")
}

func TestComplaints_NoneFound(t *testing.T) {
	svc := newTestService(t, &stubFetcher{properties: sampleProperties()})

	reply, err := svc.Complaints(context.Background(), []string{"2"})
	require.NoError(t, err)
	assert.Equal(t, "No complaints found for Cabin (id: 2).", reply.Text)
}

func TestDispatch_RoutesCommands(t *testing.T) {
	svc := newTestService(t, &stubFetcher{properties: sampleProperties()})

	assert.NotNil(t, svc.Dispatch(context.Background(), "start", nil).Menu)
	assert.Contains(t, svc.Dispatch(context.Background(), "ratings", nil).Text, "🏡 Property Ratings")
	assert.Contains(t, svc.Dispatch(context.Background(), "property", []string{"1"}).Text, "Villa")

	unknown := svc.Dispatch(context.Background(), "nope", nil)
	assert.Empty(t, unknown.Text)
	assert.Nil(t, unknown.Menu)
}

func TestHandleAction(t *testing.T) {
	svc := newTestService(t, &stubFetcher{properties: sampleProperties()})

	assert.Contains(t, svc.HandleAction(context.Background(), "action_ratings").Text, "🏡 Property Ratings")
	assert.Contains(t, svc.HandleAction(context.Background(), "action_properties").Text, "🏠 Properties List")
	assert.Contains(t, svc.HandleAction(context.Background(), "action_top5").Text, "Best Rated Properties")
	assert.Contains(t, svc.HandleAction(context.Background(), "action_property_help").Text, "/property <id>")
	assert.Contains(t, svc.HandleAction(context.Background(), "action_complaints_help").Text, "/complaints <property_id>")
	assert.Empty(t, svc.HandleAction(context.Background(), "action_unknown").Text)
}
