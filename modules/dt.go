package modules

import (
	"strings"
	"time"

	"github.com/goodsign/monday"

	"github.com/coderosh/myriad/core"
)

// DefaultLayout is used by date.format when no layout is given.
const DefaultLayout = "Monday, 2 January 2006 15:04"

type _dt struct {
	now func() time.Time
}

func loadDateTime() *core.ObjectValue {
	return newDateTime(time.Now).namespace()
}

func newDateTime(now func() time.Time) *_dt {
	return &_dt{now: now}
}

func (c *_dt) namespace() *core.ObjectValue {
	return namespace(
		"now", c.nowMillis,
		"date", c.date,
	)
}

func (c *_dt) nowMillis(args []core.Value, env *core.Environment) (core.Value, error) {
	return core.NumberValue(c.now().UnixMilli()), nil
}

// date wraps a millisecond timestamp, or the current time, in an object
// of accessors. Months count from zero.
func (c *_dt) date(args []core.Value, env *core.Environment) (core.Value, error) {
	t := c.now()
	if len(args) > 0 {
		ms, err := numberArg("dt.date", args, 0)
		if err != nil {
			return nil, err
		}
		t = time.UnixMilli(int64(ms))
	}

	return namespace(
		"date", constant(core.NumberValue(t.Day())),
		"year", constant(core.NumberValue(t.Year())),
		"month", constant(core.NumberValue(int(t.Month())-1)),
		"day", constant(core.NumberValue(int(t.Weekday()))),
		"time", constant(core.NumberValue(t.UnixMilli())),
		"format", func(args []core.Value, env *core.Environment) (core.Value, error) {
			layout := DefaultLayout
			if len(args) > 0 {
				s, err := stringArg("date.format", args, 0)
				if err != nil {
					return nil, err
				}
				layout = s
			}
			locale := "en_US"
			if len(args) > 1 {
				s, err := stringArg("date.format", args, 1)
				if err != nil {
					return nil, err
				}
				locale = s
			}
			return core.StringValue(monday.Format(t, layout, mondayLocale(locale))), nil
		},
	), nil
}

func constant(v core.Value) core.NativeFn {
	return func(args []core.Value, env *core.Environment) (core.Value, error) {
		return v, nil
	}
}

var locales = map[string]monday.Locale{
	"en":    monday.LocaleEnUS,
	"en_us": monday.LocaleEnUS,
	"en_gb": monday.LocaleEnGB,
	"de":    monday.LocaleDeDE,
	"de_de": monday.LocaleDeDE,
	"fr":    monday.LocaleFrFR,
	"fr_fr": monday.LocaleFrFR,
	"fr_ca": monday.LocaleFrCA,
	"es":    monday.LocaleEsES,
	"es_es": monday.LocaleEsES,
	"it":    monday.LocaleItIT,
	"it_it": monday.LocaleItIT,
	"pt":    monday.LocalePtPT,
	"pt_pt": monday.LocalePtPT,
	"pt_br": monday.LocalePtBR,
	"nl":    monday.LocaleNlNL,
	"nl_nl": monday.LocaleNlNL,
	"ru":    monday.LocaleRuRU,
	"ru_ru": monday.LocaleRuRU,
	"pl":    monday.LocalePlPL,
	"pl_pl": monday.LocalePlPL,
	"ja":    monday.LocaleJaJP,
	"ja_jp": monday.LocaleJaJP,
	"zh":    monday.LocaleZhCN,
	"zh_cn": monday.LocaleZhCN,
	"ko":    monday.LocaleKoKR,
	"ko_kr": monday.LocaleKoKR,
	"tr":    monday.LocaleTrTR,
	"tr_tr": monday.LocaleTrTR,
}

// mondayLocale accepts en, en-US and en_us spellings. Unknown locales
// format in English.
func mondayLocale(locale string) monday.Locale {
	if l, ok := locales[strings.ToLower(strings.ReplaceAll(locale, "-", "_"))]; ok {
		return l
	}
	return monday.LocaleEnUS
}
