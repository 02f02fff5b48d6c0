package heph

import "testing"

func TestParseSRTTwoBlocks(t *testing.T) {
	input := "1\n00:00:01,000 --> 00:00:02,500\nHello\n\n2\n00:00:03,000 --> 00:00:04,000\nWorld\n\n"

	segments := ParseSRT(input)
	if len(segments) != 2 {
		t.Fatalf("segments = %d, want 2", len(segments))
	}

	want := []Segment{
		{Start: 1.0, End: 2.5, Text: "Hello"},
		{Start: 3.0, End: 4.0, Text: "World"},
	}
	for i, w := range want {
		if segments[i] != w {
			t.Errorf("segment %d = %+v, want %+v", i, segments[i], w)
		}
	}
}

func TestParseSRTMultilineText(t *testing.T) {
	input := "1\n00:01:00,250 --> 00:01:03,750\nfirst line\nsecond line\n"

	segments := ParseSRT(input)
	if len(segments) != 1 {
		t.Fatalf("segments = %d, want 1", len(segments))
	}
	if segments[0].Text != "first line second line" {
		t.Errorf("text = %q, want lines joined by a space", segments[0].Text)
	}
	if segments[0].Start != 60.25 {
		t.Errorf("start = %v, want 60.25", segments[0].Start)
	}
}

func TestParseSRTSkipsMalformedBlock(t *testing.T) {
	input := "1\n00:00:01,000 --> 00:00:02,000\nGood\n\n2\nnot a timestamp\nBad\n\n3\n00:00:05,000 --> 00:00:06,000\nAlso good\n\n"

	segments := ParseSRT(input)
	if len(segments) != 2 {
		t.Fatalf("segments = %d, want 2 (malformed block skipped)", len(segments))
	}
	if segments[0].Text != "Good" || segments[1].Text != "Also good" {
		t.Errorf("texts = %q, %q", segments[0].Text, segments[1].Text)
	}
}

func TestParseSRTCRLFAndEmptyInput(t *testing.T) {
	if got := ParseSRT(""); len(got) != 0 {
		t.Fatalf("empty input segments = %d, want 0", len(got))
	}

	input := "1\r\n00:00:01,000 --> 00:00:02,000\r\nWindows line endings\r\n\r\n"
	segments := ParseSRT(input)
	if len(segments) != 1 {
		t.Fatalf("segments = %d, want 1", len(segments))
	}
	if segments[0].Text != "Windows line endings" {
		t.Errorf("text = %q", segments[0].Text)
	}
}

func TestParseSRTPreservesProviderOrder(t *testing.T) {
	// Segments come back in input order even when timestamps are not sorted.
	input := "1\n00:00:10,000 --> 00:00:11,000\nlater\n\n2\n00:00:01,000 --> 00:00:02,000\nearlier\n\n"

	segments := ParseSRT(input)
	if len(segments) != 2 {
		t.Fatalf("segments = %d, want 2", len(segments))
	}
	if segments[0].Text != "later" || segments[1].Text != "earlier" {
		t.Errorf("order changed: %q, %q", segments[0].Text, segments[1].Text)
	}
}
