package handler

type SslConfig = struct {
	KeyFile  string `json:"keyFile" yaml:"keyFile"`
	CertFile string `json:"certFile" yaml:"certFile"`
}

type Configuration = struct {
	// Public is the directory served under /ftp. Every file handed out must
	// resolve inside it.
	Public             string   `validate:"required"`
	NoDirectoryListing bool
	Unlisted           []string `validate:"dive,min=1,max=256"`
	Symlinks           bool
	Ssl                SslConfig

	Debug         bool
	Listen        []string `validate:"dive,min=1"`
	NoCompression bool
}
