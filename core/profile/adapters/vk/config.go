package vk

// Config holds the VK OAuth application settings.
//
// The endpoint URLs are overridable so tests can point the bridge at a local
// server.
type Config struct {
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	RedirectURL  string `env:"REDIRECT_URL"`

	AuthURL    string `env:"AUTH_URL" envDefault:"https://oauth.vk.com/authorize"`
	TokenURL   string `env:"TOKEN_URL" envDefault:"https://oauth.vk.com/access_token"`
	APIBaseURL string `env:"API_BASE_URL" envDefault:"https://api.vk.com"`
	APIVersion string `env:"API_VERSION" envDefault:"5.131"`
}
