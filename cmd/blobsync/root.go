package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/input-output-hk/catalyst-forge-libs/fs/billy"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	blobsync "github.com/flownative/go-blobsync"
	"github.com/flownative/go-blobsync/blobstore"
	"github.com/flownative/go-blobsync/source"
	"github.com/flownative/go-blobsync/synctypes"
)

var rootCmd = &cobra.Command{
	Use:           "blobsync",
	Short:         "Publish content-addressed resource collections to object storage",
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig(cmd)
	},
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default blobsync.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(publishCmd)
	rootCmd.AddCommand(refreshCmd)
}

func loadConfig(cmd *cobra.Command) error {
	if cmd.Flag("config").Changed {
		configFilePath, _ := cmd.Flags().GetString("config")
		viper.SetConfigFile(configFilePath)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName("blobsync")
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		enoent := stderrors.Is(err, os.ErrNotExist)
		var notFound viper.ConfigFileNotFoundError
		if !enoent && !stderrors.As(err, &notFound) {
			return fmt.Errorf("config read '%s': %w", viper.ConfigFileUsed(), err)
		}
	}

	viper.SetEnvPrefix("BLOBSYNC")
	viper.AutomaticEnv()

	viper.SetDefault("target.gzipLevel", 9)
	viper.SetDefault("target.concurrency", 5)
	viper.SetDefault("source.root", ".")
	viper.SetDefault("collection", "persistent")

	return nil
}

// newStore builds the S3 store from the "store" config section.
func newStore(ctx context.Context) (blobstore.Store, error) {
	var opts []blobstore.Option
	if region := viper.GetString("store.region"); region != "" {
		opts = append(opts, blobstore.WithRegion(region))
	}
	if endpoint := viper.GetString("store.endpoint"); endpoint != "" {
		opts = append(opts, blobstore.WithEndpoint(endpoint))
	}
	if accessKey := viper.GetString("store.accessKeyId"); accessKey != "" {
		opts = append(opts, blobstore.WithStaticCredentials(accessKey, viper.GetString("store.secretAccessKey")))
	}
	if viper.GetBool("store.pathStyle") {
		opts = append(opts, blobstore.WithUsePathStyle(true))
	}
	return blobstore.NewS3Store(ctx, opts...)
}

// newTarget builds the publication target from the "target" config section.
func newTarget(ctx context.Context, store blobstore.Store) (*blobsync.Target, error) {
	container := viper.GetString("target.container")
	if container == "" {
		return nil, fmt.Errorf("target.container is not configured")
	}

	opts := []synctypes.Option{
		blobsync.WithLogger(slog.Default()),
		blobsync.WithGzipLevel(viper.GetInt("target.gzipLevel")),
		blobsync.WithConcurrency(viper.GetInt("target.concurrency")),
	}
	if keyPrefix := viper.GetString("target.keyPrefix"); keyPrefix != "" {
		opts = append(opts, blobsync.WithKeyPrefix(keyPrefix))
	}
	if baseURI := viper.GetString("target.baseUri"); baseURI != "" {
		opts = append(opts, blobsync.WithBaseURI(baseURI))
	}
	if pattern := viper.GetString("target.pattern"); pattern != "" {
		opts = append(opts, blobsync.WithPattern(pattern))
	}
	if cacheControl := viper.GetString("target.cacheControl"); cacheControl != "" {
		opts = append(opts, blobsync.WithCacheControl(cacheControl))
	}
	if mediaTypes := viper.GetStringSlice("target.gzipMediaTypes"); len(mediaTypes) > 0 {
		opts = append(opts, blobsync.WithGzipMediaTypes(mediaTypes))
	}

	return blobsync.NewTarget(ctx, store, container, opts...)
}

// newCollection wires the configured source into a collection. A configured
// source container selects the bucket-backed storage, otherwise the
// filesystem source rooted at source.root is used.
func newCollection(store blobstore.Store) (synctypes.Collection, error) {
	name := viper.GetString("collection")

	if container := viper.GetString("source.container"); container != "" {
		storage, err := source.NewBucketStorage(store, container, viper.GetString("source.keyPrefix"))
		if err != nil {
			return synctypes.Collection{}, err
		}
		return synctypes.Collection{Name: name, Source: storage}, nil
	}

	root := viper.GetString("source.root")
	return synctypes.Collection{
		Name:   name,
		Source: source.NewFilesystemSource(billy.NewBaseOSFS(), root),
	}, nil
}
