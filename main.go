package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"

	box "github.com/Delta456/box-cli-maker/v2"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jessevdk/go-flags"

	"github.com/koblas/ftpserve/pkg/challenge"
	"github.com/koblas/ftpserve/pkg/handler"
)

const version = "0.1.0"

func loadConfig(path *string) handler.Configuration {
	name := "serve.json"
	if path != nil {
		name = *path
	}

	config, err := handler.LoadServeConfiguration(name)
	if err != nil {
		log.Fatal(err)
	}
	return config
}

func main() {
	var opts struct {
		Version            bool     `short:"v" long:"version" description:"Display the current version"`
		Listen             []string `short:"l" long:"listen" description:"Port to listen on, more than one may be specified"`
		Debug              *bool    `short:"d" long:"debug" description:"Shows debugging information"`
		NoDirectoryListing *bool    `short:"n" long:"no-directory-listing" description:"Do not list the public directory under /ftp"`
		NoCompression      *bool    `short:"u" long:"no-compression" description:"Disable compression for files served"`
		Symlinks           *bool    `short:"S" long:"symlinks" description:"List symlinks that stay inside the public directory"`
		Config             *string  `short:"c" long:"config" description:"Specify custom path to 'serve.json' or 'serve.yaml'"`
	}

	args, err := flags.Parse(&opts)
	if err != nil {
		if !flags.WroteHelp(err) {
			os.Exit(1)
		}
		os.Exit(0)
	}

	if opts.Version {
		fmt.Printf("%s\n", version)
		os.Exit(0)
	}

	config := loadConfig(opts.Config)

	if opts.Debug != nil {
		config.Debug = *opts.Debug
	}
	if opts.NoDirectoryListing != nil {
		config.NoDirectoryListing = *opts.NoDirectoryListing
	}
	if opts.NoCompression != nil {
		config.NoCompression = *opts.NoCompression
	}
	if opts.Symlinks != nil {
		config.Symlinks = *opts.Symlinks
	}
	if len(opts.Listen) != 0 {
		config.Listen = opts.Listen
	}
	if len(config.Listen) == 0 {
		config.Listen = []string{"3000"}
	}
	if len(args) != 0 {
		config.Public = args[0]
	}

	if err := handler.ValidateConfiguration(config); err != nil {
		log.Fatal(err)
	}

	logger := handler.NewLogger(config.Debug)

	registry := challenge.NewMemory()
	registry.OnSolved = func(key challenge.Key) {
		logger.Info("challenge solved", "key", string(key), "name", key.Name())
	}

	h, err := handler.NewHandler(config, registry)
	if err != nil {
		log.Fatal(err)
	}

	bx := box.New(box.Config{Px: 4, Py: 1})
	lines := []string{}

	for idx, port := range config.Listen {
		lines = append(lines, fmt.Sprintf("- Local:       http://%s:%s/ftp", "localhost", port))

		addr := fmt.Sprintf(":%s", port)
		listener := func() {
			router := chi.NewRouter()
			router.Use(middleware.Logger)
			if !config.NoCompression {
				router.Use(middleware.Compress(5))
			}

			h.AttachRoutes(router)

			server := http.Server{
				Addr:    addr,
				Handler: router,
			}

			if config.Ssl.KeyFile != "" && config.Ssl.CertFile != "" {
				log.Fatal(server.ListenAndServeTLS(config.Ssl.CertFile, config.Ssl.KeyFile))
			} else {
				log.Fatal(server.ListenAndServe())
			}
		}

		if idx == len(config.Listen)-1 {
			lines = append(lines, fmt.Sprintf("- Serving:     %s", h.Public))
			bx.Println("Serving!", strings.Join(lines, "\n"))

			listener()
		} else {
			go listener()
		}
	}
}
