/*
comment.go - Qualitative messages for session and monthly hours

PURPOSE:
  Maps an hour value to a fixed message through an ordered table of
  inclusive upper bounds with a catch-all overflow entry. Two tables:
  one for a single session, one for a monthly total. The monthly table
  additionally special-cases an exact zero.

  The messages themselves are user-facing copy (zh-TW) and are part of
  the contract; callers display them verbatim.
*/
package worklog

import "github.com/shopspring/decimal"

type commentBand struct {
	upTo    decimal.Decimal // inclusive upper bound
	message string
}

func band(upTo float64, message string) commentBand {
	return commentBand{upTo: decimal.NewFromFloat(upTo), message: message}
}

// Session bands, strictly ascending. The final entry is the overflow.
var sessionBands = []commentBand{
	band(0.5, "效率很高喔~下班下班"),
	band(1, "辛苦了！吃飯去"),
	band(1.5, "趕快回家休息吧！"),
	band(2, "有點晚了，回家注意安全！"),
	band(2.5, "現在才下班，回家只能洗洗睡了(T T)"),
	band(3, "為什麼要加班到這麼晚！"),
	band(4, "多工作半天，薪水有變多嗎？"),
	band(5, "有這麼多事怎麼不隔天再做(o_o)"),
	band(6, "要不要直接睡在公司？"),
}

const sessionOverflow = "「up3h;6vmp4vu6，ji3ru04u4su3xu656~」"

// Monthly bands. Zero is matched exactly before the table is consulted.
const monthlyZero = "本月還沒加班，保持下去！"

var monthlyBands = []commentBand{
	band(5, "加班時數還算正常，繼續保持！"),
	band(10, "有點累了吧？記得休息喔~"),
	band(15, "加班有點多了，注意身體！"),
	band(20, "這個月辛苦了，多休息吧！"),
	band(25, "加班時數偏高，要注意健康喔！"),
	band(30, "工作狂？記得適度休息！"),
	band(35, "這樣下去會過勞的..."),
	band(40, "已經快到極限了，好好照顧自己！"),
	band(46, "嚴重超時！該考慮換工作了嗎？"),
}

const monthlyOverflow = "超過勞基法上限了喔~是不是該離職呢xd"

// SessionComment returns the message for a single session's hours.
func SessionComment(hours decimal.Decimal) string {
	for _, b := range sessionBands {
		if hours.LessThanOrEqual(b.upTo) {
			return b.message
		}
	}
	return sessionOverflow
}

// MonthlyComment returns the message for a month's total hours.
func MonthlyComment(totalHours decimal.Decimal) string {
	if totalHours.IsZero() {
		return monthlyZero
	}
	for _, b := range monthlyBands {
		if totalHours.LessThanOrEqual(b.upTo) {
			return b.message
		}
	}
	return monthlyOverflow
}
