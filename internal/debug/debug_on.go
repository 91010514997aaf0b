//go:build debug

// Package debug provides a centralized, categorized debug logging system.
// Build with -tags debug to enable logging.
package debug

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
)

// Enabled indicates whether debug logging is active
const Enabled = true

// Category represents a debug logging category
type Category string

const (
	// Core categories
	APP        Category = "APP"        // Window loop, wiring, host effects
	COLLECTION Category = "COLLECTION" // Node tree mutation, collection files
	LAYOUT     Category = "LAYOUT"     // Row packing and upward re-layout
	PREVIEW    Category = "PREVIEW"    // Preview pipeline and thumbnail cache paths
	NAV        Category = "NAV"        // View modes, hit testing, action dispatch
	FS         Category = "FS"         // Directory scans and watches
	STORE      Category = "STORE"      // Database operations, settings, recent collections
	META       Category = "META"       // EXIF helper and fallbacks
	UI         Category = "UI"         // Rendering and picture cache
	HOTKEY     Category = "HOTKEY"     // Keyboard shortcut handling and matching

	// Detailed subcategories (use sparingly - can be verbose)
	FS_ENTRY Category = "FS_ENTRY" // Individual entry processing (very verbose)
	UI_EVENT Category = "UI_EVENT" // Pointer and key events
)

var (
	// enabledCategories controls which categories are active
	// By default, all main categories are enabled
	enabledCategories = map[Category]bool{
		APP:        true,
		COLLECTION: true,
		LAYOUT:     true,
		PREVIEW:    true,
		NAV:        true,
		FS:         true,
		STORE:      true,
		META:       true,
		UI:         true,
		HOTKEY:     true,
		// Verbose categories disabled by default
		FS_ENTRY: false,
		UI_EVENT: false,
	}
	categoryMu sync.RWMutex

	// Output destination
	logger = log.New(os.Stderr, "", log.Ltime|log.Lmicroseconds)
)

func init() {
	// Check environment variable for category overrides
	// Format: LIV_DEBUG=NAV,PREVIEW or LIV_DEBUG=all or LIV_DEBUG=none
	if env := os.Getenv("LIV_DEBUG"); env != "" {
		categoryMu.Lock()
		defer categoryMu.Unlock()

		env = strings.ToUpper(env)
		switch env {
		case "ALL":
			for cat := range enabledCategories {
				enabledCategories[cat] = true
			}
		case "NONE":
			for cat := range enabledCategories {
				enabledCategories[cat] = false
			}
		default:
			// Disable all first, then enable specified
			for cat := range enabledCategories {
				enabledCategories[cat] = false
			}
			for _, cat := range strings.Split(env, ",") {
				cat = strings.TrimSpace(cat)
				enabledCategories[Category(cat)] = true
			}
		}
	}
}

// Log logs a debug message for the specified category
func Log(cat Category, format string, args ...interface{}) {
	categoryMu.RLock()
	enabled := enabledCategories[cat]
	categoryMu.RUnlock()

	if !enabled {
		return
	}

	msg := fmt.Sprintf(format, args...)
	logger.Printf("[%s] %s", cat, msg)
}

// Enable enables a debug category
func Enable(cat Category) {
	categoryMu.Lock()
	enabledCategories[cat] = true
	categoryMu.Unlock()
}

// Disable disables a debug category
func Disable(cat Category) {
	categoryMu.Lock()
	enabledCategories[cat] = false
	categoryMu.Unlock()
}

// IsEnabled returns whether a category is enabled
func IsEnabled(cat Category) bool {
	categoryMu.RLock()
	defer categoryMu.RUnlock()
	return enabledCategories[cat]
}

// ListEnabled returns a slice of currently enabled categories
func ListEnabled() []Category {
	categoryMu.RLock()
	defer categoryMu.RUnlock()

	var enabled []Category
	for cat, on := range enabledCategories {
		if on {
			enabled = append(enabled, cat)
		}
	}
	return enabled
}
