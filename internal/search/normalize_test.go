package search

import "testing"

func TestNormalizeNFKCAndTrimSpaces(t *testing.T) {
	got := Normalize("  ｼﾝ ｼﾞｭｸ  ")
	if got != "シンジュク" {
		t.Fatalf("Normalize = %q, want %q", got, "シンジュク")
	}
}

func TestHiraganaToKatakana(t *testing.T) {
	if got := HiraganaToKatakana("しんじゅく"); got != "シンジュク" {
		t.Errorf("HiraganaToKatakana(しんじゅく) = %q, want シンジュク", got)
	}
	if got := HiraganaToKatakana("ゔ"); got != "ヴ" {
		t.Errorf("HiraganaToKatakana(ゔ) = %q, want ヴ", got)
	}
}

func TestKatakanaToHiragana(t *testing.T) {
	if got := KatakanaToHiragana("シンジュク"); got != "しんじゅく" {
		t.Errorf("KatakanaToHiragana(シンジュク) = %q, want しんじゅく", got)
	}
	if got := KatakanaToHiragana("ヴ"); got != "ゔ" {
		t.Errorf("KatakanaToHiragana(ヴ) = %q, want ゔ", got)
	}
}

func TestBuildCandidatesKeepsUniqueVariants(t *testing.T) {
	got := BuildCandidates("しんじゅく")
	want := []string{"しんじゅく", "シンジュク"}
	if len(got) != len(want) {
		t.Fatalf("BuildCandidates = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("BuildCandidates = %v, want %v", got, want)
		}
	}
}

func TestBuildTerm(t *testing.T) {
	cases := []struct {
		mode Mode
		want string
	}{
		{ModeExact, "新宿"},
		{ModePrefix, "新宿%"},
		{ModePartial, "%新宿%"},
	}
	for _, c := range cases {
		if got := BuildTerm(c.mode, "新宿"); got != c.want {
			t.Errorf("BuildTerm(%v, 新宿) = %q, want %q", c.mode, got, c.want)
		}
	}
}

func TestParseModeDefaultsToPartial(t *testing.T) {
	if ParseMode("") != ModePartial {
		t.Errorf("ParseMode(\"\") != ModePartial")
	}
	if ParseMode("bogus") != ModePartial {
		t.Errorf("ParseMode(bogus) != ModePartial")
	}
	if ParseMode("exact") != ModeExact {
		t.Errorf("ParseMode(exact) != ModeExact")
	}
}
