package handler

import "testing"

func TestParseFormLabeled(t *testing.T) {
	text := "/verify\n" +
		"ชื่อเล่น: นก\n" +
		"อายุ: 25\n" +
		"เพศ: ชาย\n" +
		"วันเกิด: 01/02/1999"

	sub, ok := ParseForm(text)
	if !ok {
		t.Fatal("expected a filled form")
	}
	if sub.Nickname != "นก" || sub.AgeText != "25" || sub.GenderText != "ชาย" || sub.BirthdayText != "01/02/1999" {
		t.Fatalf("unexpected submission: %+v", sub)
	}
}

func TestParseFormEnglishLabels(t *testing.T) {
	text := "/verify\nNickname = Nok\nAge = 30\nGender = female"
	sub, ok := ParseForm(text)
	if !ok {
		t.Fatal("expected a filled form")
	}
	if sub.Nickname != "Nok" || sub.AgeText != "30" || sub.GenderText != "female" || sub.BirthdayText != "" {
		t.Fatalf("unexpected submission: %+v", sub)
	}
}

func TestParseFormPositional(t *testing.T) {
	text := "/verify\nNok\n25\nชาย\n01/02/1999"
	sub, ok := ParseForm(text)
	if !ok {
		t.Fatal("expected a filled form")
	}
	if sub.Nickname != "Nok" || sub.AgeText != "25" || sub.GenderText != "ชาย" || sub.BirthdayText != "01/02/1999" {
		t.Fatalf("unexpected submission: %+v", sub)
	}
}

func TestParseFormMixed(t *testing.T) {
	// labeled birthday, positional nickname: label wins its slot, the
	// unlabeled line fills the next free field
	text := "/verify\nวันเกิด: 02/03/2000\nNok"
	sub, ok := ParseForm(text)
	if !ok {
		t.Fatal("expected a filled form")
	}
	if sub.BirthdayText != "02/03/2000" || sub.Nickname != "Nok" {
		t.Fatalf("unexpected submission: %+v", sub)
	}
}

func TestParseFormEmpty(t *testing.T) {
	if _, ok := ParseForm("/verify"); ok {
		t.Fatal("bare command must not count as a form")
	}
	if _, ok := ParseForm("/verify\n\n\n"); ok {
		t.Fatal("blank lines must not count as a form")
	}
}

func TestParseFormPartial(t *testing.T) {
	sub, ok := ParseForm("/verify\nอายุ: 18")
	if !ok {
		t.Fatal("a single field is enough")
	}
	if sub.AgeText != "18" || sub.Nickname != "" {
		t.Fatalf("unexpected submission: %+v", sub)
	}
}
