package main

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	humanize "github.com/dustin/go-humanize"
	"github.com/sbwhitecap/tqdm"
	"github.com/sbwhitecap/tqdm/iterators"
	"github.com/spf13/cobra"
	"github.com/vbrnv/lightwood/lightwood-go/api"
	"github.com/vbrnv/lightwood/lightwood-go/api/dtype"
	"github.com/vbrnv/lightwood/lightwood-go/config"
	"github.com/vbrnv/lightwood/lightwood-go/encoder/registry"
	"github.com/vbrnv/lightwood/lightwood-go/mixer"
	"github.com/vbrnv/lightwood/lightwood-golib/errors"
	"github.com/vbrnv/lightwood/lightwood-golib/featurestore"
	"github.com/vbrnv/lightwood/lightwood-golib/fileutil"
	"github.com/vbrnv/lightwood/lightwood-golib/lwlog"
	"github.com/vbrnv/lightwood/lightwood-golib/serialization"
	"gonum.org/v1/gonum/mat"
)

const batchSize = 256

func init() {
	log.SetPrefix("[lightwood] ")
}

// encoded is a row of the encode output.
type encoded struct {
	Value    string    `json:"value" yaml:"value"`
	Encoding []float64 `json:"encoding" yaml:"encoding"`
}

func loadConfig(path string) config.Config {
	var c config.Config
	var err error
	if path == "" {
		c, err = config.Default()
		if err == nil {
			err = c.Validate()
		}
	} else {
		c, err = config.Load(path)
	}
	fail(err)
	fail(lwlog.SetLevel(c.LogLevel))
	return c
}

func mixersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mixers",
		Short: "list the registered mixers and whether they can be used",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			avail := mixer.Availability()
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			for _, name := range mixer.Names() {
				status := "available"
				if err := avail[name]; err != nil {
					status = fmt.Sprintf("unavailable: %v", err)
				}
				fmt.Fprintf(w, "%s\t%s\n", name, status)
			}
			fail(w.Flush())
		},
	}
}

func dtypesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dtypes",
		Short: "list the dtypes that can be encoded",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			var names []string
			for _, dt := range dtype.All() {
				if registry.Supported(dt) {
					names = append(names, dt.Name())
				}
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Println(name)
			}
		},
	}
}

func encodeCmd() *cobra.Command {
	var configPath *string

	cmd := cobra.Command{
		Use:   "encode DTYPE INPUT OUTPUT",
		Short: "prepare an encoder on a newline-delimited column and write the encoding of every row",
		Long: "INPUT may be a local path, a URL or an s3:// URI. The format of OUTPUT follows its extension " +
			"(.json, .yaml, .gob, optionally followed by .gz or .sz).",
		Args: cobra.ExactArgs(3),
		Run: func(cmd *cobra.Command, args []string) {
			c := loadConfig(*configPath)

			dt, ok := dtype.FromName(args[0])
			if !ok {
				fail(errors.Errorf("unknown dtype %q", args[0]))
			}
			fail(encode(dt, args[1], args[2], c))
		},
	}
	configPath = cmd.Flags().String("config", "", "path to a .json or .yaml config")

	return &cmd
}

func encode(dt dtype.Dtype, input, output string, c config.Config) (err error) {
	var durations lwlog.Durations
	defer durations.Flush(lwlog.L())

	start := time.Now()
	column, err := readColumn(input)
	if err != nil {
		return err
	}
	durations.Since("read", start)
	lwlog.S().Infow("read column", "path", input, "rows", humanize.Comma(int64(len(column))))

	opts := c.PredictorOptions().Encoders
	if c.FeatureStore != "" {
		store, err := featurestore.Open(c.FeatureStore)
		if err != nil {
			return err
		}
		defer store.Close()
		opts.Audio.Store = store
	}

	start = time.Now()
	enc, err := registry.ForDtype(dt, false, opts)
	if err != nil {
		return err
	}
	if err := enc.Prepare(column); err != nil {
		return err
	}
	durations.Since("prepare", start)

	out, err := serialization.NewEncoder(output)
	if err != nil {
		return err
	}
	defer errors.Defer(&err, out.Close)

	start = time.Now()
	batches := (len(column) + batchSize - 1) / batchSize
	var encodeErr error
	err = tqdm.With(iterators.Interval(0, batches), "Encoding", func(b interface{}) (brk bool) {
		lo := b.(int) * batchSize
		hi := lo + batchSize
		if hi > len(column) {
			hi = len(column)
		}
		tensor, err := enc.Encode(column[lo:hi])
		if err != nil {
			encodeErr = err
			return true
		}
		for i := lo; i < hi; i++ {
			row := encoded{Value: api.Key(column[i])}
			if tensor != nil {
				row.Encoding = mat.Row(nil, i-lo, tensor)
			}
			if err := out.Encode(row); err != nil {
				encodeErr = err
				return true
			}
		}
		return
	})
	durations.Since("encode", start)
	if err != nil {
		return err
	}
	return encodeErr
}

func readColumn(path string) (api.Column, error) {
	r, err := fileutil.NewReader(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var column api.Column
	s := bufio.NewScanner(r)
	for s.Scan() {
		column = append(column, s.Text())
	}
	if err := s.Err(); err != nil {
		return nil, errors.Wrapf(err, "error reading %s", path)
	}
	return column, nil
}

func main() {
	rootCmd := &cobra.Command{Use: "lightwood"}
	rootCmd.AddCommand(mixersCmd())
	rootCmd.AddCommand(dtypesCmd())
	rootCmd.AddCommand(encodeCmd())

	fail(rootCmd.Execute())
}

func fail(err error) {
	if err != nil {
		log.Fatal(err)
	}
}
