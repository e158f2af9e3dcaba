package main

import (
	"flag"
	"log"
	"os"
	"strings"
	"time"

	"github.com/qs3c/leadcrm_go_server/config"
	"github.com/qs3c/leadcrm_go_server/internal/database"
	"github.com/qs3c/leadcrm_go_server/internal/model"
)

var (
	dryRun    = flag.Bool("dry-run", true, "Dry run mode, don't actually rewrite rows")
	batchSize = flag.Int("batch-size", 1000, "Rows to scan per batch")
)

// 历史客户端写入过的各种时间格式，统一修成 2006-01-02T15:04:05
var legacyLayouts = []string{
	"2006-01-02 15:04:05",
	"2006/01/02 15:04:05",
	"01/02/2006 15:04:05",
	"01/02/2006 3:04 PM",
	time.RFC3339,
	"2006-01-02",
}

const canonicalLayout = "2006-01-02T15:04:05"

func main() {
	flag.Parse()

	log.Println("Starting call date fix...")
	log.Printf("Mode: dry-run=%v", *dryRun)

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.NewMySQL(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect database: %v", err)
	}

	var scanned, fixed, unparsable int
	lastID := int64(0)

	for {
		var calls []model.Call
		err := db.Where("id > ?", lastID).
			Order("id").
			Limit(*batchSize).
			Find(&calls).Error
		if err != nil {
			log.Fatalf("Failed to scan calls: %v", err)
		}
		if len(calls) == 0 {
			break
		}

		for _, call := range calls {
			lastID = call.ID
			scanned++

			if isCanonical(call.CallDate) {
				continue
			}

			normalized, ok := normalize(call.CallDate)
			if !ok {
				unparsable++
				log.Printf("  ? call %d: cannot parse %q, leaving as is", call.ID, call.CallDate)
				continue
			}

			log.Printf("  - call %d: %q -> %q", call.ID, call.CallDate, normalized)
			if !*dryRun {
				err := db.Model(&model.Call{}).
					Where("id = ?", call.ID).
					Update("call_date", normalized).Error
				if err != nil {
					log.Printf("    Failed to update call %d: %v", call.ID, err)
					continue
				}
			}
			fixed++
		}
	}

	log.Println(strings.Repeat("=", 60))
	log.Printf("Scanned: %d", scanned)
	log.Printf("Fixed: %d", fixed)
	log.Printf("Unparsable: %d", unparsable)
	if *dryRun {
		log.Println("DRY RUN MODE - no rows were rewritten")
		log.Println("Run with -dry-run=false to apply")
	} else {
		log.Println("Date fix completed")
	}
	log.Println(strings.Repeat("=", 60))
}

// isCanonical 判断时间串是否已经是标准格式
func isCanonical(s string) bool {
	_, err := time.Parse(canonicalLayout, s)
	return err == nil
}

// normalize 尝试用历史格式解析并转成标准格式
func normalize(s string) (string, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range legacyLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(canonicalLayout), true
		}
	}
	return "", false
}
