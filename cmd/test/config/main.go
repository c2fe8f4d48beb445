package main

import (
	"fmt"
	"log"

	"remote-jobs-harvester/internal/config"
)

func main() {
	fmt.Println("🔧 Testing config loading...")
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}
	fmt.Printf("✅ Config loaded successfully!\n")
	fmt.Printf("   Launch mode: %s\n", cfg.LaunchMode())
	if cfg.LaunchMode() == config.LaunchLocal {
		fmt.Printf("   User data dir: %s\n", cfg.UserDataDir)
	} else {
		fmt.Printf("   Remote host: %s\n", cfg.RemoteHost)
	}
	fmt.Printf("   Listing URL: %s\n", cfg.ListingURL)
	fmt.Printf("   Settle: %s (%v)\n", cfg.Settle.Mode, cfg.Settle.Delay)
	fmt.Printf("   Workers: %d @ %.1f pages/s\n", cfg.Workers, cfg.RequestsPerSecond)
	fmt.Printf("   Output: %s\n", cfg.OutputPath)
	fmt.Printf("   Telegram summary: %t\n", cfg.NotifyEnabled())
}
