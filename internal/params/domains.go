package params

import (
	"fmt"
	"math"
)

// Domain validates a value that already has the right kind.
type Domain func(v Value) error

// IntRange accepts integers in [lo, hi].
func IntRange(lo, hi int) Domain {
	return func(v Value) error {
		if v.Int() < lo || v.Int() > hi {
			return fmt.Errorf("must be between %d and %d", lo, hi)
		}
		return nil
	}
}

// IntMin accepts integers >= lo.
func IntMin(lo int) Domain {
	return func(v Value) error {
		if v.Int() < lo {
			return fmt.Errorf("must be at least %d", lo)
		}
		return nil
	}
}

// DoubleRange accepts finite doubles in [lo, hi].
func DoubleRange(lo, hi float64) Domain {
	return func(v Value) error {
		f := v.Double()
		if math.IsNaN(f) || f < lo || f > hi {
			return fmt.Errorf("must be between %g and %g", lo, hi)
		}
		return nil
	}
}

// DoubleMin accepts finite doubles >= lo.
func DoubleMin(lo float64) Domain {
	return func(v Value) error {
		f := v.Double()
		if math.IsNaN(f) || math.IsInf(f, 0) || f < lo {
			return fmt.Errorf("must be a finite number >= %g", lo)
		}
		return nil
	}
}

// Finite rejects NaN and infinities.
func Finite(v Value) error {
	if math.IsNaN(v.Double()) || math.IsInf(v.Double(), 0) {
		return fmt.Errorf("must be a finite number")
	}
	return nil
}

var (
	percent  = DoubleRange(0, 100)
	fraction = DoubleRange(0, 1)
	nonNeg   = IntMin(0)
	size     = DoubleMin(0)
)

// domains maps option names to their validators. Doubles without an entry
// still have to be finite.
var domains = map[string]Domain{
	// enumerations
	"tessedit_pageseg_mode":             IntRange(0, 13),
	"tessedit_ocr_engine_mode":          IntRange(0, 3),
	"thresholding_method":               IntRange(0, 2),
	"pageseg_devanagari_split_strategy": IntRange(0, 2),
	"ocr_devanagari_split_strategy":     IntRange(0, 2),
	"lstm_choice_mode":                  IntRange(0, 2),
	"page_xml_level":                    IntRange(0, 1),
	"tessedit_reject_mode":              IntRange(0, 5),
	"fixsp_done_mode":                   IntRange(0, 3),
	"jpg_quality":                       IntRange(1, 100),
	"user_defined_dpi":                  IntRange(0, 2400),
	"tessedit_page_number":              IntMin(-1),

	// percentages
	"quality_rej_pc":                    percent,
	"quality_blob_pc":                   percent,
	"quality_outline_pc":                percent,
	"quality_char_pc":                   percent,
	"quality_rowrej_pc":                 percent,
	"tessedit_reject_doc_percent":       percent,
	"tessedit_reject_block_percent":     percent,
	"tessedit_reject_row_percent":       percent,
	"tessedit_whole_wd_rej_row_percent": percent,
	"tessedit_good_doc_still_rowrej_wd": percent,

	// fractions
	"invert_threshold":                      fraction,
	"thresholding_score_fraction":           fraction,
	"thresholding_kfactor":                  fraction,
	"textord_tabfind_vertical_text_ratio":   fraction,
	"textord_tabfind_aligned_gap_fraction":  fraction,
	"rej_whole_of_mostly_reject_word_fract": fraction,
	"superscript_scaledown_ratio":           fraction,
	"subscript_max_y_top":                   fraction,
	"superscript_min_y_bottom":              fraction,

	// sizes measured in DPI multiples or pixels
	"thresholding_window_size":        size,
	"thresholding_tile_size":          size,
	"thresholding_smooth_kernel_size": size,
	"crunch_del_min_ht":               size,
	"crunch_del_max_ht":               size,
	"crunch_del_min_width":            size,
	"crunch_small_outlines_size":      size,
	"fixsp_small_outlines_size":       size,
	"min_orientation_margin":          size,

	// debug levels and counts
	"debug_x_ht_level":                nonNeg,
	"multilang_debug_level":           nonNeg,
	"paragraph_debug_level":           nonNeg,
	"tessedit_bigram_debug":           nonNeg,
	"x_ht_acceptance_tolerance":       nonNeg,
	"suspect_level":                   nonNeg,
	"bidi_debug":                      nonNeg,
	"applybox_debug":                  nonNeg,
	"applybox_page":                   nonNeg,
	"noise_max_per_blob":              nonNeg,
	"noise_max_per_word":              nonNeg,
	"quality_min_initial_alphas_reqd": nonNeg,
	"tessedit_preserve_min_wd_len":    nonNeg,
	"crunch_pot_indicators":           nonNeg,
	"crunch_leave_lc_strings":         nonNeg,
	"crunch_leave_uc_strings":         nonNeg,
	"crunch_long_repetitions":         nonNeg,
	"crunch_debug":                    nonNeg,
	"fixsp_non_noise_limit":           nonNeg,
	"debug_fix_space_level":           nonNeg,
	"x_ht_min_change":                 nonNeg,
	"superscript_debug":               nonNeg,
	"suspect_short_words":             nonNeg,
	"tessedit_image_border":           nonNeg,
	"min_sane_x_ht_pixels":            nonNeg,
	"min_characters_to_try":           nonNeg,
	"lstm_choice_iterations":          nonNeg,
	"tessedit_parallelize":            nonNeg,
	"tessedit_font_id":                nonNeg,
}

// deprecations maps deprecated options to the option that supersedes them.
var deprecations = map[string]string{
	"tessedit_do_invert": "invert_threshold",
}
