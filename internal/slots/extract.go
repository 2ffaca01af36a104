package slots

import "time"

// ExtractedSlots holds every slot pulled from one utterance. It lives for a
// single turn only.
type ExtractedSlots struct {
	Text     string                `json:"text"`
	Customer Result[CustomerMatch] `json:"customer"`
	Date     Result[DateSlot]      `json:"date"`
	Time     Result[ClockTime]     `json:"time"`
	Duration Result[int]           `json:"duration_minutes"`
}

// Extract normalizes text and runs each extractor once. The customer name is
// blanked before the other scans so a name such as "Monday-Smith" is not read
// as a weekday. dates is consulted only when no weekday is named; nil skips it.
func Extract(text string, ref time.Time, dates DateResolver) ExtractedSlots {
	text = Normalize(text)
	out := ExtractedSlots{Text: text, Customer: ExtractCustomer(text)}

	scan := text
	if m, ok := out.Customer.Get(); ok {
		scan = maskSpan(text, m.Start, m.End)
	}

	out.Date = ResolveWeekday(scan, ref)
	if !out.Date.Resolved() && dates != nil {
		if day, ok := dates.ResolveDate(scan, ref).Get(); ok {
			out.Date = Found(DateSlot{
				Date:    day,
				Weekday: day.Weekday().String(),
				Source:  SourceExplicit,
			})
		}
	}

	out.Time = ExtractTime(scan)
	out.Duration = ExtractDuration(scan)
	return out
}
