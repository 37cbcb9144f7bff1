package export

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/mkarslan/wordsprint/internal/progress"
)

// ToCSV writes one row per sprint day: the date, words written that day,
// and the running total including the baseline.
func ToCSV(p progress.Project, entries progress.Entries, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	// Header
	if err := w.Write([]string{"Date", "Words", "Cumulative"}); err != nil {
		return err
	}

	series := progress.ComputeSeries(p, entries)
	for i, day := range series.Days {
		row := []string{
			day,
			fmt.Sprintf("%d", series.Daily[i]),
			fmt.Sprintf("%d", series.Cumulative[i+1]),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return w.Error()
}
