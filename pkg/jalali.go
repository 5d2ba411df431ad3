package utils

import (
	"fmt"
	"time"
)

// Cumulative days before each Gregorian month (non-leap years).
var gregorianDaysBeforeMonth = [12]int{0, 31, 59, 90, 120, 151, 181, 212, 243, 273, 304, 334}

// Persian month names, Farvardin through Esfand.
var jalaliMonthNames = [12]string{
	"فروردین", "اردیبهشت", "خرداد", "تیر", "مرداد", "شهریور",
	"مهر", "آبان", "آذر", "دی", "بهمن", "اسفند",
}

// GregorianToJalali converts a Gregorian calendar date to the Jalali
// (Persian solar) calendar using the fixed epoch-offset formula with the
// built-in 33-year cycle. Pure arithmetic, no time zone involved.
func GregorianToJalali(gy, gm, gd int) (jy, jm, jd int) {
	gy2 := gy
	if gm > 2 {
		gy2 = gy + 1
	}
	days := 355666 + (365 * gy) + ((gy2 + 3) / 4) - ((gy2 + 99) / 100) + ((gy2 + 399) / 400) + gd + gregorianDaysBeforeMonth[gm-1]
	jy = -1595 + (33 * (days / 12053))
	days %= 12053
	jy += 4 * (days / 1461)
	days %= 1461
	if days > 365 {
		jy += (days - 1) / 365
		days = (days - 1) % 365
	}
	if days < 186 {
		jm = 1 + (days / 31)
		jd = 1 + (days % 31)
	} else {
		jm = 7 + ((days - 186) / 30)
		jd = 1 + ((days - 186) % 30)
	}
	return jy, jm, jd
}

// JalaliDate formats t as "YYYY/MM/DD" in the Jalali calendar.
func JalaliDate(t time.Time) string {
	jy, jm, jd := GregorianToJalali(t.Year(), int(t.Month()), t.Day())
	return fmt.Sprintf("%04d/%02d/%02d", jy, jm, jd)
}

// JalaliDateTime formats t as "YYYY/MM/DD HH:MM" in the Jalali calendar.
func JalaliDateTime(t time.Time) string {
	jy, jm, jd := GregorianToJalali(t.Year(), int(t.Month()), t.Day())
	return fmt.Sprintf("%04d/%02d/%02d %02d:%02d", jy, jm, jd, t.Hour(), t.Minute())
}

// JalaliDatePersian formats t as a Persian-language date, e.g. "1 فروردین 1403".
func JalaliDatePersian(t time.Time) string {
	jy, jm, jd := GregorianToJalali(t.Year(), int(t.Month()), t.Day())
	name := "نامعلوم"
	if jm >= 1 && jm <= 12 {
		name = jalaliMonthNames[jm-1]
	}
	return fmt.Sprintf("%d %s %d", jd, name, jy)
}
