package container

import (
	"log/slog"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/meshup-app/server/internal/background"
	"github.com/meshup-app/server/internal/models"
	"github.com/meshup-app/server/internal/questgen"
	"github.com/meshup-app/server/internal/services"
	"github.com/supabase-community/supabase-go"
	"go.mongodb.org/mongo-driver/mongo"
	"google.golang.org/genai"
)

// Container holds all application dependencies
type Container struct {
	Logger     *slog.Logger
	Cloudinary *cloudinary.Cloudinary
	// Database clients
	SupabaseClient *supabase.Client
	MongoDBClient  *mongo.Client
	JobRepo        models.JobRepo
	Runner         *background.Runner

	UserService       *services.UserService
	EventService      *services.EventService
	AttendeeService   *services.AttendeeService
	QuestService      *services.QuestService
	AssignService     *services.AssignService
	VerifyService     *services.VerifyService
	ConnectionService *services.ConnectionService
}

// NewContainer creates a new dependency injection container
func NewContainer(
	logger *slog.Logger,
	cloudinary *cloudinary.Cloudinary,
	supabaseClient *supabase.Client,
	mongoDBClient *mongo.Client,
	genaiClient *genai.Client,
	geminiModel string,
	supaUrl, supaKey string,
) *Container {
	// Initialize repositories
	supa := models.SupabaseNewRepo(supabaseClient, supaUrl, supaKey)
	mongo := models.MongodbNewRepo(mongoDBClient)

	runner := background.NewRunner(logger, mongo)
	generator := questgen.NewGeminiGenerator(genaiClient, geminiModel)

	userService := services.NewUserService(supa, cloudinary)
	eventService := services.NewEventService(mongo, mongo, supa, cloudinary, logger)
	questService := services.NewQuestService(mongo, mongo, mongo, supa, generator, logger)
	assignService := services.NewAssignService(mongo, mongo, logger)
	verifyService := services.NewVerifyService(mongo, mongo, logger)
	attendeeService := services.NewAttendeeService(mongo, mongo, supa, questService, runner, logger)
	connectionService := services.NewConnectionService(mongo, mongo, supa, verifyService, logger)

	return &Container{
		Logger:            logger,
		Cloudinary:        cloudinary,
		SupabaseClient:    supabaseClient,
		MongoDBClient:     mongoDBClient,
		JobRepo:           mongo,
		Runner:            runner,
		UserService:       userService,
		EventService:      eventService,
		AttendeeService:   attendeeService,
		QuestService:      questService,
		AssignService:     assignService,
		VerifyService:     verifyService,
		ConnectionService: connectionService,
	}
}
