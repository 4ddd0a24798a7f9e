// internal/bot/handlers.go
package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"property-report-bot/internal/chart"
	"property-report-bot/internal/common/errors"
	"property-report-bot/internal/common/logger"
	"property-report-bot/internal/common/metrics"
	"property-report-bot/internal/common/observability"
	"property-report-bot/internal/delivery"
	"property-report-bot/internal/models"
	"property-report-bot/internal/ranking"
	"property-report-bot/internal/report"
)

const (
	welcomeText = "👋 Welcome to the Property Management Bot!\n\n" +
		"I can help you with:\n" +
		"• View property ratings (Airbnb & Booking)\n" +
		"• Browse the list of properties\n" +
		"• Check complaints for any property\n\n" +
		"Use the menu below or type commands directly:"

	menuText = "📌 Main Menu\n\nChoose an option below:"

	noDataText        = "No property data available."
	noDataRatingsText = "No property data available (check the data source URL or network)."
	noRankingText     = "Could not calculate ratings."
	noPropertiesText  = "No properties available."

	propertyUsageText = "Usage: /property <id>\nExample: /property 1"

	complaintsUsageText = "Usage: /complaints <property_id>\n" +
		"Example: /complaints 1\n\n" +
		"This will show all complaints for the specified property."

	complaintsNotConfiguredText = "Complaints feature is not configured.\n" +
		"Please set COMPLAINTS_URL in environment variables."

	propertyHelpText = "🔍 Property Details\n\n" +
		"To view details for a specific property, use:\n" +
		"/property <id>\n\n" +
		"Example: /property 1"

	complaintsHelpText = "📋 View Complaints\n\n" +
		"To see complaints for a specific property, use:\n" +
		"/complaints <property_id>\n\n" +
		"Example: /complaints 1"
)

// Fetcher is the data source surface the command layer depends on.
type Fetcher interface {
	FetchAllProperties(ctx context.Context) ([]models.Record, error)
	FetchPropertiesList(ctx context.Context) ([]models.Record, error)
	FetchPropertyByID(ctx context.Context, propertyID string) (models.Record, error)
	FetchComplaints(ctx context.Context, propertyID string) ([]models.Record, error)
}

// Reply is the outcome of one command pipeline. Text is sent first (chunked
// by the sender), then the image if present, then the menu.
type Reply struct {
	Text         string
	Image        []byte
	ImageName    string
	ImageCaption string
	Menu         *delivery.Menu
}

// Service runs one synchronous pipeline per inbound command. It holds no
// mutable state, so concurrent updates can share a single instance.
type Service struct {
	fetcher Fetcher
	obs     *observability.Observability
	logger  logger.Logger
}

func NewService(fetcher Fetcher, obs *observability.Observability, log logger.Logger) *Service {
	return &Service{
		fetcher: fetcher,
		obs:     obs,
		logger:  log.WithFields(map[string]interface{}{"component": "bot"}),
	}
}

// MainMenu returns the shared inline keyboard.
func MainMenu(text string) *delivery.Menu {
	return &delivery.Menu{
		Text: text,
		Rows: [][]delivery.Button{
			{
				{Label: "🏆 Top 5", Data: "action_top5"},
				{Label: "📈 Top 20", Data: "action_top20"},
			},
			{
				{Label: "📊 All Ratings", Data: "action_ratings"},
				{Label: "🏠 Properties", Data: "action_properties"},
			},
			{
				{Label: "🔍 Property Details", Data: "action_property_help"},
				{Label: "📋 Complaints", Data: "action_complaints_help"},
			},
		},
	}
}

// Dispatch routes a slash command to its pipeline, recording duration and
// outcome metrics. Unknown commands produce an empty reply.
func (s *Service) Dispatch(ctx context.Context, command string, args []string) Reply {
	start := time.Now()
	ctx, span := s.obs.StartSpan(ctx, "command."+command)
	defer span.End()

	var reply Reply
	var err error

	switch command {
	case "start":
		reply = s.Start()
	case "menu":
		reply = s.Menu()
	case "ratings":
		reply, err = s.Ratings(ctx)
	case "top5":
		reply, err = s.Top(ctx, 5)
	case "top20":
		reply, err = s.Top(ctx, 20)
	case "properties":
		reply, err = s.Properties(ctx)
	case "property":
		reply, err = s.Property(ctx, args)
	case "complaints":
		reply, err = s.Complaints(ctx, args)
	default:
		return Reply{}
	}

	status := "success"
	if err != nil {
		status = "error"
		std := errors.Normalize(err)
		s.logger.Error("command pipeline failed", map[string]interface{}{
			"command":  command,
			"code":     string(std.Code),
			"category": errors.GetErrorCategory(std.Code),
			"error":    std.Error(),
		})
	}

	metrics.CommandsProcessed.WithLabelValues(command, status).Inc()
	metrics.CommandDuration.WithLabelValues(command).Observe(time.Since(start).Seconds())
	s.obs.RecordCommandProcessed(ctx, command, status)
	s.obs.RecordCommandDuration(ctx, time.Since(start), command)

	return reply
}

// HandleAction routes an inline-button press to the matching pipeline.
func (s *Service) HandleAction(ctx context.Context, action string) Reply {
	switch action {
	case "action_top5":
		return s.Dispatch(ctx, "top5", nil)
	case "action_top20":
		return s.Dispatch(ctx, "top20", nil)
	case "action_ratings":
		return s.Dispatch(ctx, "ratings", nil)
	case "action_properties":
		return s.Dispatch(ctx, "properties", nil)
	case "action_property_help":
		return Reply{Text: propertyHelpText}
	case "action_complaints_help":
		return Reply{Text: complaintsHelpText}
	default:
		return Reply{}
	}
}

// Start greets the user and shows the menu.
func (s *Service) Start() Reply {
	return Reply{Menu: MainMenu(welcomeText)}
}

// Menu shows the main menu.
func (s *Service) Menu() Reply {
	return Reply{Menu: MainMenu(menuText)}
}

// Ratings builds the full ratings report for every property.
func (s *Service) Ratings(ctx context.Context) (Reply, error) {
	props, err := s.fetcher.FetchAllProperties(ctx)
	if err != nil {
		return Reply{Text: noDataRatingsText}, err
	}
	if len(props) == 0 {
		return Reply{Text: noDataRatingsText}, nil
	}
	return Reply{Text: report.RatingsReport(props)}, nil
}

// Top builds the ranked report plus the comparison chart for the best rated
// properties. A chart failure degrades to text only.
func (s *Service) Top(ctx context.Context, limit int) (Reply, error) {
	props, err := s.fetcher.FetchAllProperties(ctx)
	if err != nil {
		return Reply{Text: noDataText}, err
	}
	if len(props) == 0 {
		return Reply{Text: noDataText}, nil
	}

	ranked := ranking.TopRated(props, limit)
	if len(ranked) == 0 {
		return Reply{Text: noRankingText}, nil
	}

	reply := Reply{Text: report.TopReport(ranked)}

	title := fmt.Sprintf("Top %d Properties - Ratings Comparison", len(ranked))
	png, chartErr := chart.Render(ranked, title)
	if chartErr != nil {
		std := errors.NewChartRenderFailedError(chartErr)
		s.logger.Error("chart rendering failed", map[string]interface{}{
			"code":  string(std.Code),
			"error": std.Error(),
		})
		return reply, nil
	}
	metrics.ChartsRendered.Inc()

	reply.Image = png
	reply.ImageName = "ratings_chart.png"
	reply.ImageCaption = fmt.Sprintf("📊 Top %d Properties Rating Chart", len(ranked))
	return reply, nil
}

// Properties builds the basic listing report.
func (s *Service) Properties(ctx context.Context) (Reply, error) {
	props, err := s.fetcher.FetchPropertiesList(ctx)
	if err != nil {
		return Reply{Text: noPropertiesText}, err
	}
	if len(props) == 0 {
		return Reply{Text: noPropertiesText}, nil
	}
	return Reply{Text: report.PropertiesReport(props)}, nil
}

// Property shows the detailed block for one property id.
func (s *Service) Property(ctx context.Context, args []string) (Reply, error) {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return Reply{Text: propertyUsageText}, nil
	}
	propID := args[0]

	p, err := s.fetcher.FetchPropertyByID(ctx, propID)
	if err != nil {
		if errors.IsNotFound(err) {
			return Reply{Text: fmt.Sprintf("Property with id %s not found.", propID)}, nil
		}
		return Reply{Text: noDataText}, err
	}
	return Reply{Text: report.FormatProperty(p)}, nil
}

// Complaints verifies the property exists, then lists its complaints.
func (s *Service) Complaints(ctx context.Context, args []string) (Reply, error) {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return Reply{Text: complaintsUsageText}, nil
	}
	propID := args[0]

	prop, err := s.fetcher.FetchPropertyByID(ctx, propID)
	if err != nil {
		if errors.IsNotFound(err) {
			return Reply{Text: fmt.Sprintf("Property with id %s not found.", propID)}, nil
		}
		return Reply{Text: noDataText}, err
	}

	complaints, err := s.fetcher.FetchComplaints(ctx, propID)
	if err != nil {
		if errors.CodeOf(err) == errors.ErrCodeComplaintsNotConfigured {
			return Reply{Text: complaintsNotConfiguredText}, nil
		}
		return Reply{Text: noDataText}, err
	}

	propName := prop.StringField(fmt.Sprintf("Property %s", propID), "name")
	if len(complaints) == 0 {
		return Reply{Text: fmt.Sprintf("No complaints found for %s (id: %s).", propName, propID)}, nil
	}
	return Reply{Text: report.ComplaintsReport(propName, propID, complaints)}, nil
}
