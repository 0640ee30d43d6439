package analytics

import (
	"bytes"
	"fmt"

	"github.com/pkg/errors"
	chart "github.com/wcharczuk/go-chart/v2"

	"github.com/iamwavecut/guardbot/internal/db"
)

var ErrNoData = errors.New("no activity data")

// RenderTopTalkers draws a PNG bar chart of per-user message counts. User IDs
// are shortened to their last four digits, full IDs do not fit under a bar.
func RenderTopTalkers(talkers []*db.TopTalker, title string) ([]byte, error) {
	if len(talkers) == 0 {
		return nil, ErrNoData
	}

	bars := make([]chart.Value, 0, len(talkers))
	for _, talker := range talkers {
		bars = append(bars, chart.Value{
			Label: shortenID(talker.UserID),
			Value: float64(talker.Messages),
		})
	}

	graph := chart.BarChart{
		Title:    title,
		Width:    800,
		Height:   500,
		BarWidth: 60,
		Background: chart.Style{
			Padding: chart.Box{Top: 40},
		},
		Bars: bars,
	}

	buf := bytes.NewBuffer(nil)
	if err := graph.Render(chart.PNG, buf); err != nil {
		return nil, errors.WithMessage(err, "render chart")
	}
	return buf.Bytes(), nil
}

func shortenID(userID int64) string {
	id := fmt.Sprintf("%d", userID)
	if len(id) > 4 {
		id = id[len(id)-4:]
	}
	return ".." + id
}
