package config

// Default returns a complete configuration for the supported portals. A
// config file only needs to override what differs.
func Default() *Config {
	return &Config{
		Rod: RodConfig{
			Headless:       true,
			Leakless:       true,
			PageTimeoutS:   30,
			PollIntervalMS: 250,
			DiagnosticsDir: ".",
		},
		HTTP: HttpConfig{
			UserAgent:      "Mozilla/5.0 (X11; Linux x86_64; rv:109.0) Gecko/20100101 Firefox/115.0",
			TotalTimeoutS:  600,
			ChunkSizeBytes: 1 << 20,
		},
		Observability: ObservabilityConfig{
			LogLevel:   "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		Storage: StorageConfig{
			CommandTimeoutMS: 5000,
		},
		Publishers: PublishersConfig{
			Freitag: PublisherConfig{
				LoginURL:      "https://digital.freitag.de/login",
				LogoutURL:     "https://digital.freitag.de/logout",
				BaseURL:       "https://digital.freitag.de",
				LoginWaitS:    30,
				ElementWaitMS: 20000,
				Formats:       []string{"epub"},
				Selectors: Selectors{
					Username: "#id_username",
					Password: "#id_password",
					Submit:   "button[type='submit']",
				},
			},
			Spiegel: PublisherConfig{
				LoginURL:      "https://gruppenkonto.spiegel.de/anmelden.html",
				LogoutURL:     "https://gruppenkonto.spiegel.de/abmelden.html",
				BaseURL:       "https://gruppenkonto.spiegel.de",
				LoginWaitS:    30,
				ElementWaitMS: 20000,
				WeekOffset:    1,
				Formats:       []string{"pdf"},
				Selectors: Selectors{
					Username: "#loginname",
					Password: "#password",
					Submit:   "#submit",
				},
			},
			Zeit: PublisherConfig{
				LoginURL:      "https://meine.zeit.de/anmelden",
				BaseURL:       "https://epaper.zeit.de/abo/diezeit",
				SuccessURL:    "zeit.de/konto",
				LoginWaitS:    120,
				ElementWaitMS: 20000,
				Formats:       []string{"pdf"},
				Selectors: Selectors{
					Username:     "#username",
					Password:     "#password",
					Submit:       "#kc-login",
					CurrentLink:  "a",
					CurrentText:  "ZUR AKTUELLEN AUSGABE",
					ArchiveLink:  "section.archives a[href*='abo/diezeit']",
					Title:        "p.epaper-info-title",
					TitleText:    "DIE ZEIT",
					DownloadLink: "a[href*='download'], a[href*='delivery']",
				},
			},
		},
	}
}
