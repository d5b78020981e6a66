package main

import (
	"fmt"
	"log"
	"math"
	"strings"

	arg "github.com/alexflint/go-arg"
	humanize "github.com/dustin/go-humanize"
	"github.com/gocarina/gocsv"
	"github.com/montanaflynn/stats"
	"github.com/vbrnv/lightwood/lightwood-go/accuracy"
	"github.com/vbrnv/lightwood/lightwood-go/api"
	"github.com/vbrnv/lightwood/lightwood-go/api/dtype"
	"github.com/vbrnv/lightwood/lightwood-go/encoder"
	"github.com/vbrnv/lightwood/lightwood-go/encoder/multihot"
	"github.com/vbrnv/lightwood/lightwood-go/encoder/registry"
	"github.com/vbrnv/lightwood/lightwood-golib/errors"
	"github.com/vbrnv/lightwood/lightwood-golib/fileutil"
)

func init() {
	log.SetPrefix("[evaluate-accuracy] ")
}

// record is a row of the input CSV. lower and upper are optional.
type record struct {
	Truth      string `csv:"truth"`
	Prediction string `csv:"prediction"`
	Lower      string `csv:"lower"`
	Upper      string `csv:"upper"`
}

// tagsBackend serves the tags encoder of the target column.
type tagsBackend struct {
	column string
	enc    encoder.Encoder
}

func (b tagsBackend) Encoder(column string) (encoder.Encoder, error) {
	if column != b.column {
		return nil, errors.Errorf("no encoder for %s", column)
	}
	return b.enc, nil
}

func main() {
	args := struct {
		Predictions string `arg:"positional,required" help:"CSV with truth,prediction[,lower,upper] columns; local path, URL or s3:// URI"`
		Dtype       string `help:"dtype of the target column"`
		Categorical bool   `help:"score array elements as classes"`
		Separator   string `help:"separator of array elements within a cell"`
		Encoder     string `help:"tags encoder saved at training time; when empty, one is prepared on the truth column, so tags never seen in training are scored too"`
	}{
		Dtype:     "float",
		Separator: " ",
	}
	arg.MustParse(&args)

	dt, ok := dtype.FromName(args.Dtype)
	if !ok {
		log.Fatalf("unknown dtype %q", args.Dtype)
	}

	records, err := readRecords(args.Predictions)
	if err != nil {
		log.Fatalln(err)
	}
	log.Printf("read %s rows", humanize.Comma(int64(len(records))))

	const column = "target"
	predictions, data := frames(records, column, dt, args.Separator)

	var backend accuracy.Backend
	if dt == dtype.Tags {
		enc, err := tagsEncoder(args.Encoder, data[column])
		if err != nil {
			log.Fatalln(err)
		}
		backend = tagsBackend{column: column, enc: enc}
	}

	target := api.Output{
		Name:      column,
		DataDtype: dt,
		Typing:    map[string]interface{}{},
	}
	score, err := accuracy.EvaluateAccuracy(predictions, data, target, backend, accuracy.WithCategorical(args.Categorical))
	if err != nil {
		log.Fatalln(err)
	}
	fmt.Printf("Accuracy (%s): %v\n", dt, score)

	if dt.IsNumeric() {
		printErrors(records)
	}
}

// tagsEncoder loads the encoder saved at path, or prepares a new one on truth when path is empty.
func tagsEncoder(path string, truth api.Column) (encoder.Encoder, error) {
	if path != "" {
		enc, err := multihot.Load(path)
		if err != nil {
			return nil, errors.Wrapf(err, "error loading tags encoder")
		}
		return enc, nil
	}
	enc, err := registry.ForDtype(dtype.Tags, true, registry.Options{})
	if err != nil {
		return nil, err
	}
	if err := enc.Prepare(truth); err != nil {
		return nil, err
	}
	return enc, nil
}

func readRecords(path string) ([]*record, error) {
	r, err := fileutil.NewReader(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var records []*record
	if err := gocsv.Unmarshal(r, &records); err != nil {
		return nil, errors.Wrapf(err, "error reading %s", path)
	}
	return records, nil
}

func frames(records []*record, column string, dt dtype.Dtype, sep string) (api.Frame, api.Frame) {
	split := func(s string) interface{} {
		var seq []interface{}
		for _, v := range strings.Split(strings.TrimSpace(s), sep) {
			seq = append(seq, v)
		}
		return seq
	}

	predictions := api.Frame{}
	data := api.Frame{}
	var ranges api.Column
	for _, r := range records {
		var truth, predicted interface{} = r.Truth, r.Prediction
		if dt == dtype.Array {
			// scalar truths are one-step-ahead forecasts
			if strings.Contains(strings.TrimSpace(r.Truth), sep) {
				truth = split(r.Truth)
			}
			predicted = split(r.Prediction)
		}
		data[column] = append(data[column], truth)
		predictions[api.PredictionsField] = append(predictions[api.PredictionsField], predicted)
		if r.Lower != "" && r.Upper != "" {
			ranges = append(ranges, []interface{}{r.Lower, r.Upper})
		}
	}
	if len(ranges) > 0 && len(ranges) == len(records) {
		predictions[api.ConfidenceRangeField(column)] = ranges
	}
	return predictions, data
}

func printErrors(records []*record) {
	var residuals []float64
	for _, r := range records {
		t, ok1 := api.AsFloat(r.Truth)
		p, ok2 := api.AsFloat(r.Prediction)
		if ok1 && ok2 {
			residuals = append(residuals, math.Abs(t-p))
		}
	}
	if len(residuals) == 0 {
		return
	}
	fmt.Printf("Absolute error:\n")
	f, _ := stats.Median(residuals)
	fmt.Printf("  Median: %v\n", f)
	f, _ = stats.Mean(residuals)
	fmt.Printf("  Mean: %v\n", f)
	f, _ = stats.StdDevS(residuals)
	fmt.Printf("  StdDev: %v\n", f)
	f, _ = stats.Max(residuals)
	fmt.Printf("  Max: %v\n", f)
}
