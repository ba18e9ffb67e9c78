package config

import "fmt"

// Selectors holds the CSS selectors used to drive a publisher portal.
// Texts are matched case-insensitively against element text.
type Selectors struct {
	LoginFrame  string `yaml:"login_frame"`
	Username    string `yaml:"username"`
	Password    string `yaml:"password"`
	Submit      string `yaml:"submit"`
	CurrentLink string `yaml:"current_link"`
	CurrentText string `yaml:"current_text"`
	ArchiveLink string `yaml:"archive_link"`
	Title       string `yaml:"title"`
	TitleText   string `yaml:"title_text"`
	// DownloadLink is matched together with the requested format in the
	// link text.
	DownloadLink string `yaml:"download_link"`
}

// validateSelectors checks the minimal selector set needed to log in.
func validateSelectors(s *Selectors) error {
	if s.Username == "" {
		return fmt.Errorf("selectors.username is required")
	}
	if s.Password == "" {
		return fmt.Errorf("selectors.password is required")
	}
	if s.Submit == "" {
		return fmt.Errorf("selectors.submit is required")
	}
	if s.CurrentLink != "" && s.CurrentText == "" {
		return fmt.Errorf("selectors.current_text is required with selectors.current_link")
	}
	return nil
}
