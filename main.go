package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"housefinder/api"
	"housefinder/config"
	"housefinder/httputil"
	"housefinder/identity"
	"housefinder/logging"
	"housefinder/models"
	"housefinder/scheduler"
	"housefinder/services"
	"housefinder/storage"
	"housefinder/workers"
)

var (
	listFlag     = flag.Bool("list", false, "Show recommendations (cached or default)")
	detailFlag   = flag.Int("detail", 0, "Show one property by id")
	mapFlag      = flag.Int("map", 0, "Write the map fragment for a property id to stdout")
	describeFlag = flag.String("describe", "", "Submit a free-text requirement description")
	submitFlag   = flag.Bool("submit", false, "Submit the structured form (see -min, -max, -school, ...)")
	historyFlag  = flag.Bool("history", false, "Show recent enquiries for this device")
	daemonFlag   = flag.Bool("daemon", false, "Run the refresh daemon")
	clearFlag    = flag.Bool("clear-device", false, "Clear the stored device id and exit")

	minRent   = flag.Int("min", 1000, "Minimum monthly rent (SGD)")
	maxRent   = flag.Int("max", 2000, "Maximum monthly rent (SGD)")
	schoolID  = flag.Int("school", 0, "Target school id (required for -submit)")
	district  = flag.Int("district", 0, "Target district id (optional)")
	mrtDist   = flag.Int("mrt", 0, "Maximum MRT distance in meters (optional)")
	flatTypes = flag.String("flat-types", "", "Comma-separated flat type preference")
)

func main() {
	flag.Parse()
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	logFile, err := logging.Setup("housefinder.log")
	if err != nil {
		log.Printf("Warning: could not set up file logging: %v", err)
	} else {
		defer logFile.Close()
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logging.SetLevel(cfg.LogLevel)

	store, err := storage.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open local store: %v", err)
	}
	defer store.Close()

	devices := identity.NewProvider(store)
	cache := storage.NewRecommendationCache(store)

	client := api.NewClient(cfg.API.BaseURL, httputil.NewClient(cfg.API.Timeout))
	if cfg.API.AuthToken != "" {
		client.SetTokenSource(func() string { return cfg.API.AuthToken })
	}

	service := services.NewRecommendationService(client, cache, devices)

	ctx := context.Background()

	if cfg.Database.URL != "" {
		history, err := storage.NewEnquiryStore(ctx, cfg.Database.URL)
		if err != nil {
			log.Fatalf("Failed to connect to history database: %v", err)
		}
		defer history.Close()
		service.SetHistory(history)
		log.Println("Enquiry history enabled")
	}

	if cfg.Archive.Enabled() {
		uploader, err := storage.NewSnapshotUploader(ctx, storage.S3Config{
			Bucket:          cfg.Archive.Bucket,
			Region:          cfg.Archive.Region,
			Endpoint:        cfg.Archive.Endpoint,
			AccessKeyID:     cfg.Archive.AccessKeyID,
			SecretAccessKey: cfg.Archive.SecretAccessKey,
		})
		if err != nil {
			log.Fatalf("Failed to set up snapshot archive: %v", err)
		}
		service.SetArchive(uploader)
		log.Printf("Snapshot archive enabled: %s", cfg.Archive.Bucket)
	}

	switch {
	case *clearFlag:
		if err := devices.Clear(); err != nil {
			log.Fatalf("Failed to clear device id: %v", err)
		}
		fmt.Println("Device id cleared")

	case *submitFlag:
		runSubmit(ctx, service)

	case *describeFlag != "":
		runDescribe(ctx, service, *describeFlag)

	case *detailFlag > 0:
		runDetail(ctx, service, *detailFlag)

	case *mapFlag > 0:
		runMap(ctx, service, *mapFlag)

	case *historyFlag:
		runHistory(ctx, service)

	case *daemonFlag:
		runDaemon(ctx, cfg, service, store)

	default:
		runList(ctx, service)
	}
}

func runSubmit(ctx context.Context, service *services.RecommendationService) {
	prefs := buildPreferences()
	res, err := service.SubmitForm(ctx, prefs)
	if err != nil {
		fatalAPIError(err)
	}
	printRecommendations(res.Properties, res.TotalCount)
}

func runDescribe(ctx context.Context, service *services.RecommendationService, description string) {
	res, err := service.SubmitDescription(ctx, description)
	if err != nil {
		fatalAPIError(err)
	}
	printRecommendations(res.Properties, res.TotalCount)
}

func runList(ctx context.Context, service *services.RecommendationService) {
	res, err := service.Recommendations(ctx)
	if err != nil {
		fatalAPIError(err)
	}
	printRecommendations(res.Properties, res.TotalCount)
}

func runDetail(ctx context.Context, service *services.RecommendationService, id int) {
	prop, err := service.PropertyDetail(ctx, id)
	if err != nil {
		fatalAPIError(err)
	}
	out, _ := json.MarshalIndent(prop, "", "  ")
	fmt.Println(string(out))
}

func runMap(ctx context.Context, service *services.RecommendationService, id int) {
	// Property resolution always completes before the map fetch starts.
	prop, err := service.PropertyDetail(ctx, id)
	if err != nil {
		fatalAPIError(err)
	}
	doc, fallback := service.PropertyMap(ctx, prop)
	if fallback {
		log.Printf("Using bundled fallback map for property %d", id)
	}
	fmt.Print(doc.HTML)
}

func runHistory(ctx context.Context, service *services.RecommendationService) {
	records, err := service.History(ctx, 10)
	if err != nil {
		log.Fatalf("History unavailable: %v", err)
	}
	if len(records) == 0 {
		fmt.Println("No enquiries recorded for this device")
		return
	}
	for _, rec := range records {
		count := 0
		if rec.Result != nil {
			count = len(rec.Result.Properties)
		}
		label := rec.Description
		if label == "" {
			label = fmt.Sprintf("form: rent %d-%d, school %d", rec.MinRent, rec.MaxRent, rec.SchoolID)
		}
		fmt.Printf("%s  #%d  %s  (%d properties)\n",
			rec.CreateTime.Format(time.RFC3339), rec.EID, label, count)
	}
}

func runDaemon(ctx context.Context, cfg *config.Config, service *services.RecommendationService, store *storage.SQLiteStore) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sched := scheduler.New(&cfg.Scheduler, service)
	if err := sched.Start(ctx); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}

	janitor := workers.NewCacheJanitor(store, cfg.Cache.TTL)
	go janitor.Run(ctx, 1*time.Hour)
	log.Println("Cache janitor started")

	log.Println("Daemon running. Press Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("Shutting down...")
	sched.Stop()
}

func buildPreferences() *models.FormPreferences {
	prefs := &models.FormPreferences{
		MinMonthlyRent:     *minRent,
		MaxMonthlyRent:     *maxRent,
		SchoolID:           *schoolID,
		ImportanceRent:     3,
		ImportanceLocation: 3,
		ImportanceFacility: 3,
	}
	if *district > 0 {
		prefs.TargetDistrictID = district
	}
	if *mrtDist > 0 {
		prefs.MaxMRTDistance = mrtDist
	}
	if *flatTypes != "" {
		for _, t := range strings.Split(*flatTypes, ",") {
			if t = strings.TrimSpace(t); t != "" {
				prefs.FlatTypePreference = append(prefs.FlatTypePreference, t)
			}
		}
	}
	return prefs
}

func printRecommendations(props []models.Property, total int) {
	fmt.Printf("%d matching properties (showing %d)\n\n", total, len(props))
	for _, p := range props {
		fmt.Printf("#%d  %s  (%s)\n", p.PropertyID, p.Name, p.District)
		fmt.Printf("    %s  |  %d bed %d bath  |  %d sqft  |  built %s\n",
			p.Price, p.Beds, p.Baths, p.Area, p.BuildTime)
		fmt.Printf("    %s  |  school %d min  |  MRT %dm  |  %s, %s\n",
			p.Location, p.TimeToSchool, p.DistanceToMRT, p.Latitude.String(), p.Longitude.String())
		if p.RecommendReason != "" {
			fmt.Printf("    %s\n", p.RecommendReason)
		}
		fmt.Println()
	}
}

func fatalAPIError(err error) {
	var ve *api.ValidationError
	if errors.As(err, &ve) {
		log.Fatalf("Incomplete input: %s (missing: %s)", ve.Message, strings.Join(ve.MissingFields, ", "))
	}
	var ne *api.NetworkError
	if errors.As(err, &ne) {
		log.Fatalf("Cannot reach the recommendation service. Check your connection and the API URL. (%v)", err)
	}
	var ae *api.APIError
	if errors.As(err, &ae) {
		log.Fatalf("Request rejected (code %d): %s", ae.Code, ae.Message)
	}
	log.Fatalf("Request failed: %v", err)
}
