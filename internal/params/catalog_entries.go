package params

// builtinEntries lists every option the engine exposes, in the order the
// engine declares them. ApplyAll writes parameters in this order.
var builtinEntries = []Entry{
	{Name: "tessedit_resegment_from_boxes", Kind: KindBool, Default: Bool(false), Group: GroupTraining, Description: "Take segmentation and labeling from box file"},
	{Name: "tessedit_resegment_from_line_boxes", Kind: KindBool, Default: Bool(false), Group: GroupTraining, Description: "Conversion of word/line box file to char box file"},
	{Name: "tessedit_train_from_boxes", Kind: KindBool, Default: Bool(false), Group: GroupTraining, Description: "Generate training data from boxed chars"},
	{Name: "tessedit_make_boxes_from_boxes", Kind: KindBool, Default: Bool(false), Group: GroupTraining, Description: "Generate more boxes from boxed chars"},
	{Name: "tessedit_train_line_recognizer", Kind: KindBool, Default: Bool(false), Group: GroupTraining, Description: "Break input into lines and remap boxes if present"},
	{Name: "tessedit_dump_pageseg_images", Kind: KindBool, Default: Bool(false), Group: GroupDebug, Description: "Dump intermediate images made during page segmentation"},
	{Name: "tessedit_do_invert", Kind: KindBool, Default: Bool(true), Group: GroupSegmentation, Description: "Try inverted line image if necessary (deprecated, will be removed in release 6, use the 'invert_threshold' parameter instead)"},
	{Name: "invert_threshold", Kind: KindDouble, Default: Double(0.7), Group: GroupSegmentation, Description: "For lines with a mean confidence below this value, OCR is also tried with an inverted image"},
	{Name: "tessedit_pageseg_mode", Kind: KindInt, Default: Int(6), Group: GroupSegmentation, Description: "Page seg mode: 0=osd only, 1=auto+osd, 2=auto_only, 3=auto, 4=column, 5=block_vert, 6=block, 7=line, 8=word, 9=word_circle, 10=char, 11=sparse_text, 12=sparse_text+osd, 13=raw_line"},
	{Name: "thresholding_method", Kind: KindInt, Default: Int(0), Group: GroupSegmentation, Description: "Thresholding method: 0 = Otsu, 1 = LeptonicaOtsu, 2 = \"Sauvola"},
	{Name: "thresholding_debug", Kind: KindBool, Default: Bool(false), Group: GroupDebug, Description: "Debug the thresholding process"},
	{Name: "thresholding_window_size", Kind: KindDouble, Default: Double(0.33), Group: GroupSegmentation, Description: "Window size for measuring local statistics (to be multiplied by image DPI)"},
	{Name: "thresholding_kfactor", Kind: KindDouble, Default: Double(0.34), Group: GroupSegmentation, Description: "Factor for reducing threshold due to variance"},
	{Name: "thresholding_tile_size", Kind: KindDouble, Default: Double(0.33), Group: GroupSegmentation, Description: "Desired tile size (to be multiplied by image DPI)"},
	{Name: "thresholding_smooth_kernel_size", Kind: KindDouble, Default: Double(0.0), Group: GroupSegmentation, Description: "Size of convolution kernel applied to threshold array (to be multiplied by image DPI)"},
	{Name: "thresholding_score_fraction", Kind: KindDouble, Default: Double(0.1), Group: GroupSegmentation, Description: "Fraction of the max Otsu score"},
	{Name: "tessedit_ocr_engine_mode", Kind: KindInt, Default: Int(3), Group: GroupRecognition, Description: "Which OCR engine(s) to run (Tesseract, LSTM, both)"},
	{Name: "tessedit_char_blacklist", Kind: KindString, Default: String(""), Group: GroupRecognition, Description: "Blacklist of chars not to recognize"},
	{Name: "tessedit_char_whitelist", Kind: KindString, Default: String(""), Group: GroupRecognition, Description: "Whitelist of chars to recognize"},
	{Name: "tessedit_char_unblacklist", Kind: KindString, Default: String(""), Group: GroupRecognition, Description: "List of chars to override tessedit_char_blacklist"},
	{Name: "tessedit_ambigs_training", Kind: KindBool, Default: Bool(false), Group: GroupTraining, Description: "Perform training for ambiguities"},
	{Name: "pageseg_devanagari_split_strategy", Kind: KindInt, Default: Int(0), Group: GroupSegmentation, Description: "Whether to use the top-line splitting process for Devanagari documents while performing page-segmentation."},
	{Name: "ocr_devanagari_split_strategy", Kind: KindInt, Default: Int(0), Group: GroupSegmentation, Description: "Whether to use the top-line splitting process for Devanagari documents while performing ocr."},
	{Name: "tessedit_write_params_to_file", Kind: KindString, Default: String(""), Group: GroupDebug, Description: "Write all parameters to the given file."},
	{Name: "tessedit_adaption_debug", Kind: KindBool, Default: Bool(false), Group: GroupDebug, Description: "Generate and print debug information for adaption"},
	{Name: "bidi_debug", Kind: KindInt, Default: Int(0), Group: GroupDebug, Description: "Debug level for BiDi"},
	{Name: "applybox_debug", Kind: KindInt, Default: Int(1), Group: GroupTraining, Description: "Debug level"},
	{Name: "applybox_page", Kind: KindInt, Default: Int(0), Group: GroupTraining, Description: "Page number to apply boxes from"},
	{Name: "applybox_exposure_pattern", Kind: KindString, Default: String(".exp"), Group: GroupTraining, Description: "Exposure value follows this pattern in the image filename"},
	{Name: "applybox_learn_chars_and_char_frags_mode", Kind: KindBool, Default: Bool(false), Group: GroupTraining, Description: "Learn both character fragments (as is done in the special low exposure mode) as well as unfragmented characters"},
	{Name: "applybox_learn_ngrams_mode", Kind: KindBool, Default: Bool(false), Group: GroupTraining, Description: "Each bounding box is assumed to contain ngrams. Only learn the ngrams whose outlines overlap horizontally."},
	{Name: "tessedit_display_outwords", Kind: KindBool, Default: Bool(false), Group: GroupDebug, Description: "Draw output wordss"},
	{Name: "tessedit_dump_choices", Kind: KindBool, Default: Bool(false), Group: GroupDebug, Description: "Dump char choices"},
	{Name: "tessedit_timing_debug", Kind: KindBool, Default: Bool(false), Group: GroupDebug, Description: "Print timing stats"},
	{Name: "tessedit_fix_fuzzy_spaces", Kind: KindBool, Default: Bool(true), Group: GroupRejection, Description: "Try to improve fuzzy spaces"},
	{Name: "tessedit_unrej_any_wd", Kind: KindBool, Default: Bool(false), Group: GroupRejection, Description: "Don't bother with word plausibility"},
	{Name: "tessedit_fix_hyphens", Kind: KindBool, Default: Bool(true), Group: GroupRejection, Description: "Crunch double hyphens?"},
	{Name: "tessedit_enable_doc_dict", Kind: KindBool, Default: Bool(true), Group: GroupRecognition, Description: "Add words to the document dictionary"},
	{Name: "tessedit_debug_fonts", Kind: KindBool, Default: Bool(false), Group: GroupDebug, Description: "Output font info per char"},
	{Name: "tessedit_font_id", Kind: KindInt, Default: Int(0), Group: GroupRecognition, Description: "Font ID to use or zero"},
	{Name: "tessedit_debug_block_rejection", Kind: KindBool, Default: Bool(false), Group: GroupDebug, Description: "Block and Row stats"},
	{Name: "tessedit_enable_bigram_correction", Kind: KindBool, Default: Bool(true), Group: GroupRecognition, Description: "Enable correction based on the word bigram dictionary."},
	{Name: "tessedit_enable_dict_correction", Kind: KindBool, Default: Bool(false), Group: GroupRecognition, Description: "Enable single word correction based on the dictionary."},
	{Name: "tessedit_bigram_debug", Kind: KindInt, Default: Int(0), Group: GroupDebug, Description: "Amount of debug output for bigram correction."},
	{Name: "enable_noise_removal", Kind: KindBool, Default: Bool(true), Group: GroupSegmentation, Description: "Remove and conditionally reassign small outlines when they confuse layout analysis, determining diacritics vs noise"},
	{Name: "debug_noise_removal", Kind: KindInt, Default: Int(0), Group: GroupDebug, Description: "Debug reassignment of small outlines"},
	{Name: "noise_cert_basechar", Kind: KindDouble, Default: Double(-8.0), Group: GroupSegmentation, Description: "Worst (min) certainty, for which a diacritic is allowed to make the base character worse and still be included"},
	{Name: "noise_cert_disjoint", Kind: KindDouble, Default: Double(-1.0), Group: GroupSegmentation, Description: "Worst (min) certainty, for which a non-overlapping diacritic is allowed to make the base character worse and still be included"},
	{Name: "noise_cert_punc", Kind: KindDouble, Default: Double(-3.0), Group: GroupSegmentation, Description: "Worst (min) certainty, for which a diacritic is allowed to make a new stand-alone blob"},
	{Name: "noise_cert_factor", Kind: KindDouble, Default: Double(0.375), Group: GroupSegmentation, Description: "Factor of certainty margin for adding diacritics to not count as worse"},
	{Name: "noise_max_per_blob", Kind: KindInt, Default: Int(8), Group: GroupSegmentation, Description: "Max diacritics to apply to a blob"},
	{Name: "noise_max_per_word", Kind: KindInt, Default: Int(16), Group: GroupSegmentation, Description: "Max diacritics to apply to a word"},
	{Name: "debug_x_ht_level", Kind: KindInt, Default: Int(0), Group: GroupDebug, Description: "Reestimate debug"},
	{Name: "chs_leading_punct", Kind: KindString, Default: String("('`\""), Group: GroupRecognition, Description: "Leading punctuation"},
	{Name: "chs_trailing_punct1", Kind: KindString, Default: String(").,;:?!"), Group: GroupRecognition, Description: "1st Trailing punctuation"},
	{Name: "chs_trailing_punct2", Kind: KindString, Default: String(")'`\""), Group: GroupRecognition, Description: "2nd Trailing punctuation"},
	{Name: "quality_rej_pc", Kind: KindDouble, Default: Double(0.08), Group: GroupRejection, Description: "good_quality_doc lte rejection limit"},
	{Name: "quality_blob_pc", Kind: KindDouble, Default: Double(0.0), Group: GroupRejection, Description: "good_quality_doc gte good blobs limit"},
	{Name: "quality_outline_pc", Kind: KindDouble, Default: Double(1.0), Group: GroupRejection, Description: "good_quality_doc lte outline error limit"},
	{Name: "quality_char_pc", Kind: KindDouble, Default: Double(0.95), Group: GroupRejection, Description: "good_quality_doc gte good char limit"},
	{Name: "quality_min_initial_alphas_reqd", Kind: KindInt, Default: Int(2), Group: GroupRejection, Description: "alphas in a good word"},
	{Name: "tessedit_tess_adaption_mode", Kind: KindInt, Default: Int(39), Group: GroupRecognition, Description: "Adaptation decision algorithm for tess"},
	{Name: "tessedit_minimal_rej_pass1", Kind: KindBool, Default: Bool(false), Group: GroupRejection, Description: "Do minimal rejection on pass 1 output"},
	{Name: "tessedit_test_adaption", Kind: KindBool, Default: Bool(false), Group: GroupRecognition, Description: "Test adaption criteria"},
	{Name: "test_pt", Kind: KindBool, Default: Bool(false), Group: GroupDebug, Description: "Test for point"},
	{Name: "test_pt_x", Kind: KindDouble, Default: Double(99999.99), Group: GroupDebug, Description: "xcoord"},
	{Name: "test_pt_y", Kind: KindDouble, Default: Double(99999.99), Group: GroupDebug, Description: "ycoord"},
	{Name: "multilang_debug_level", Kind: KindInt, Default: Int(0), Group: GroupDebug, Description: "Print multilang debug info."},
	{Name: "paragraph_debug_level", Kind: KindInt, Default: Int(0), Group: GroupDebug, Description: "Print paragraph debug info."},
	{Name: "paragraph_text_based", Kind: KindBool, Default: Bool(true), Group: GroupRecognition, Description: "Run paragraph detection on the post-text-recognition (more accurate)"},
	{Name: "lstm_use_matrix", Kind: KindBool, Default: Bool(true), Group: GroupRecognition, Description: "Use ratings matrix/beam search with lstm"},
	{Name: "outlines_odd", Kind: KindString, Default: String("%|"), Group: GroupRejection, Description: "Non standard number of outlines"},
	{Name: "outlines_2", Kind: KindString, Default: String("ij!?%\":;"), Group: GroupRejection, Description: "Non standard number of outlines"},
	{Name: "tessedit_good_quality_unrej", Kind: KindBool, Default: Bool(true), Group: GroupRejection, Description: "Reduce rejection on good docs"},
	{Name: "tessedit_use_reject_spaces", Kind: KindBool, Default: Bool(true), Group: GroupRejection, Description: "Reject spaces?"},
	{Name: "tessedit_reject_doc_percent", Kind: KindDouble, Default: Double(65.0), Group: GroupRejection, Description: "%rej allowed before rej whole doc"},
	{Name: "tessedit_reject_block_percent", Kind: KindDouble, Default: Double(45.0), Group: GroupRejection, Description: "%rej allowed before rej whole block"},
	{Name: "tessedit_reject_row_percent", Kind: KindDouble, Default: Double(40.0), Group: GroupRejection, Description: "%rej allowed before rej whole row"},
	{Name: "tessedit_whole_wd_rej_row_percent", Kind: KindDouble, Default: Double(70.0), Group: GroupRejection, Description: "Number of row rejects in whole word rejects which prevents whole row rejection"},
	{Name: "tessedit_preserve_blk_rej_perfect_wds", Kind: KindBool, Default: Bool(true), Group: GroupRejection, Description: "Only rej partially rejected words in block rejection"},
	{Name: "tessedit_preserve_row_rej_perfect_wds", Kind: KindBool, Default: Bool(true), Group: GroupRejection, Description: "Only rej partially rejected words in row rejection"},
	{Name: "tessedit_dont_blkrej_good_wds", Kind: KindBool, Default: Bool(false), Group: GroupRejection, Description: "Use word segmentation quality metric"},
	{Name: "tessedit_dont_rowrej_good_wds", Kind: KindBool, Default: Bool(false), Group: GroupRejection, Description: "Use word segmentation quality metric"},
	{Name: "tessedit_preserve_min_wd_len", Kind: KindInt, Default: Int(2), Group: GroupRecognition, Description: "Only preserve wds longer than this"},
	{Name: "tessedit_row_rej_good_docs", Kind: KindBool, Default: Bool(true), Group: GroupRejection, Description: "Apply row rejection to good docs"},
	{Name: "tessedit_good_doc_still_rowrej_wd", Kind: KindDouble, Default: Double(1.1), Group: GroupRejection, Description: "rej good doc wd if more than this fraction rejected"},
	{Name: "tessedit_reject_bad_qual_wds", Kind: KindBool, Default: Bool(true), Group: GroupRejection, Description: "Reject all bad quality wds"},
	{Name: "tessedit_debug_doc_rejection", Kind: KindBool, Default: Bool(false), Group: GroupDebug, Description: "Page stats"},
	{Name: "tessedit_debug_quality_metrics", Kind: KindBool, Default: Bool(false), Group: GroupDebug, Description: "Output data to debug file"},
	{Name: "bland_unrej", Kind: KindBool, Default: Bool(false), Group: GroupRejection, Description: "unrej potential with no checks"},
	{Name: "quality_rowrej_pc", Kind: KindDouble, Default: Double(1.1), Group: GroupRejection, Description: "good_quality_doc gte good char limit"},
	{Name: "unlv_tilde_crunching", Kind: KindBool, Default: Bool(false), Group: GroupRejection, Description: "Mark v.bad words for tilde crunch"},
	{Name: "hocr_font_info", Kind: KindBool, Default: Bool(false), Group: GroupOutput, Description: "Add font info to hocr output"},
	{Name: "hocr_char_boxes", Kind: KindBool, Default: Bool(false), Group: GroupOutput, Description: "Add coordinates for each character to hocr output"},
	{Name: "crunch_early_merge_tess_fails", Kind: KindBool, Default: Bool(true), Group: GroupRejection, Description: "Before word crunch?"},
	{Name: "crunch_early_convert_bad_unlv_chs", Kind: KindBool, Default: Bool(false), Group: GroupRejection, Description: "Take out ~^ early?"},
	{Name: "crunch_terrible_rating", Kind: KindDouble, Default: Double(80.0), Group: GroupRejection, Description: "crunch rating lt this"},
	{Name: "crunch_terrible_garbage", Kind: KindBool, Default: Bool(true), Group: GroupRejection, Description: "As it says"},
	{Name: "crunch_poor_garbage_cert", Kind: KindDouble, Default: Double(-9.0), Group: GroupRejection, Description: "crunch garbage cert lt this"},
	{Name: "crunch_poor_garbage_rate", Kind: KindDouble, Default: Double(60.0), Group: GroupRejection, Description: "crunch garbage rating lt this"},
	{Name: "crunch_pot_poor_rate", Kind: KindDouble, Default: Double(40.0), Group: GroupRejection, Description: "POTENTIAL crunch rating lt this"},
	{Name: "crunch_pot_poor_cert", Kind: KindDouble, Default: Double(-8.0), Group: GroupRejection, Description: "POTENTIAL crunch cert lt this"},
	{Name: "crunch_del_rating", Kind: KindDouble, Default: Double(60.0), Group: GroupRejection, Description: "POTENTIAL crunch rating lt this"},
	{Name: "crunch_del_cert", Kind: KindDouble, Default: Double(-10.0), Group: GroupRejection, Description: "POTENTIAL crunch cert lt this"},
	{Name: "crunch_del_min_ht", Kind: KindDouble, Default: Double(0.7), Group: GroupRejection, Description: "Del if word ht lt xht x this"},
	{Name: "crunch_del_max_ht", Kind: KindDouble, Default: Double(3.0), Group: GroupRejection, Description: "Del if word ht gt xht x this"},
	{Name: "crunch_del_min_width", Kind: KindDouble, Default: Double(3.0), Group: GroupRejection, Description: "Del if word width lt xht x this"},
	{Name: "crunch_del_high_word", Kind: KindDouble, Default: Double(1.5), Group: GroupRejection, Description: "Del if word gt xht x this above bl"},
	{Name: "crunch_del_low_word", Kind: KindDouble, Default: Double(0.5), Group: GroupRejection, Description: "Del if word gt xht x this below bl"},
	{Name: "crunch_small_outlines_size", Kind: KindDouble, Default: Double(0.6), Group: GroupRejection, Description: "Small if lt xht x this"},
	{Name: "crunch_rating_max", Kind: KindInt, Default: Int(10), Group: GroupRejection, Description: "For adj length in rating per ch"},
	{Name: "crunch_pot_indicators", Kind: KindInt, Default: Int(1), Group: GroupRejection, Description: "How many potential indicators needed"},
	{Name: "crunch_leave_ok_strings", Kind: KindBool, Default: Bool(true), Group: GroupRejection, Description: "Don't touch sensible strings"},
	{Name: "crunch_accept_ok", Kind: KindBool, Default: Bool(true), Group: GroupRejection, Description: "Use acceptability in okstring"},
	{Name: "crunch_leave_accept_strings", Kind: KindBool, Default: Bool(false), Group: GroupRejection, Description: "Don't pot crunch sensible strings"},
	{Name: "crunch_include_numerals", Kind: KindBool, Default: Bool(false), Group: GroupRejection, Description: "Fiddle alpha figures"},
	{Name: "crunch_leave_lc_strings", Kind: KindInt, Default: Int(4), Group: GroupRejection, Description: "Don't crunch words with long lower case strings"},
	{Name: "crunch_leave_uc_strings", Kind: KindInt, Default: Int(4), Group: GroupRejection, Description: "Don't crunch words with long lower case strings"},
	{Name: "crunch_long_repetitions", Kind: KindInt, Default: Int(3), Group: GroupRejection, Description: "Crunch words with long repetitions"},
	{Name: "crunch_debug", Kind: KindInt, Default: Int(0), Group: GroupDebug, Description: "As it says"},
	{Name: "fixsp_non_noise_limit", Kind: KindInt, Default: Int(1), Group: GroupRejection, Description: "How many non-noise blbs either side?"},
	{Name: "fixsp_small_outlines_size", Kind: KindDouble, Default: Double(0.28), Group: GroupRejection, Description: "Small if lt xht x this"},
	{Name: "tessedit_prefer_joined_punct", Kind: KindBool, Default: Bool(false), Group: GroupRejection, Description: "Reward punctuation joins"},
	{Name: "fixsp_done_mode", Kind: KindInt, Default: Int(1), Group: GroupRejection, Description: "What constitutes done for spacing"},
	{Name: "debug_fix_space_level", Kind: KindInt, Default: Int(0), Group: GroupDebug, Description: "Contextual fixspace debug"},
	{Name: "numeric_punctuation", Kind: KindString, Default: String(".,"), Group: GroupRecognition, Description: "Punct. chs expected WITHIN numbers"},
	{Name: "x_ht_acceptance_tolerance", Kind: KindInt, Default: Int(8), Group: GroupSegmentation, Description: "Max allowed deviation of blob top outside of font data"},
	{Name: "x_ht_min_change", Kind: KindInt, Default: Int(8), Group: GroupSegmentation, Description: "Min change in xht before actually trying it"},
	{Name: "superscript_debug", Kind: KindInt, Default: Int(0), Group: GroupDebug, Description: "Debug level for sub & superscript fixer"},
	{Name: "superscript_worse_certainty", Kind: KindDouble, Default: Double(2.0), Group: GroupSegmentation, Description: "How many times worse certainty does a superscript position glyph need to be for us to try classifying it as a char with a different baseline?"},
	{Name: "superscript_bettered_certainty", Kind: KindDouble, Default: Double(0.97), Group: GroupSegmentation, Description: "What reduction in badness do we think sufficient to choose a superscript over what we'd thought"},
	{Name: "superscript_scaledown_ratio", Kind: KindDouble, Default: Double(0.4), Group: GroupSegmentation, Description: "A superscript scaled down more than this is unbelievably small"},
	{Name: "subscript_max_y_top", Kind: KindDouble, Default: Double(0.5), Group: GroupSegmentation, Description: "Maximum top of a character measured as a multiple of x-height above the baseline for us to reconsider whether it's a subscript"},
	{Name: "superscript_min_y_bottom", Kind: KindDouble, Default: Double(0.3), Group: GroupSegmentation, Description: "Minimum bottom of a character measured as a multiple of x-height above the baseline for us to reconsider whether it's a superscript"},
	{Name: "tessedit_write_block_separators", Kind: KindBool, Default: Bool(false), Group: GroupOutput, Description: "Write block separators in output"},
	{Name: "tessedit_write_rep_codes", Kind: KindBool, Default: Bool(false), Group: GroupOutput, Description: "Write repetition char code"},
	{Name: "tessedit_write_unlv", Kind: KindBool, Default: Bool(false), Group: GroupOutput, Description: "Write .unlv output file"},
	{Name: "tessedit_create_txt", Kind: KindBool, Default: Bool(false), Group: GroupOutput, Description: "Write .txt output file"},
	{Name: "tessedit_create_hocr", Kind: KindBool, Default: Bool(false), Group: GroupOutput, Description: "Write .html hOCR output file"},
	{Name: "tessedit_create_alto", Kind: KindBool, Default: Bool(false), Group: GroupOutput, Description: "Write .xml ALTO file"},
	{Name: "tessedit_create_page_xml", Kind: KindBool, Default: Bool(false), Group: GroupOutput, Description: "Write .page.xml PAGE file"},
	{Name: "page_xml_polygon", Kind: KindBool, Default: Bool(true), Group: GroupOutput, Description: "Create the PAGE file with polygons instead of box values"},
	{Name: "page_xml_level", Kind: KindInt, Default: Int(0), Group: GroupOutput, Description: "Create the PAGE file on 0=line or 1=word level."},
	{Name: "tessedit_create_lstmbox", Kind: KindBool, Default: Bool(false), Group: GroupTraining, Description: "Write .box file for LSTM training"},
	{Name: "tessedit_create_tsv", Kind: KindBool, Default: Bool(false), Group: GroupOutput, Description: "Write .tsv output file"},
	{Name: "tessedit_create_wordstrbox", Kind: KindBool, Default: Bool(false), Group: GroupTraining, Description: "Write WordStr format .box output file"},
	{Name: "tessedit_create_pdf", Kind: KindBool, Default: Bool(false), Group: GroupOutput, Description: "Write .pdf output file"},
	{Name: "textonly_pdf", Kind: KindBool, Default: Bool(false), Group: GroupOutput, Description: "Create PDF with only one invisible text layer"},
	{Name: "jpg_quality", Kind: KindInt, Default: Int(85), Group: GroupOutput, Description: "Set JPEG quality level"},
	{Name: "user_defined_dpi", Kind: KindInt, Default: Int(0), Group: GroupSegmentation, Description: "Specify DPI for input image"},
	{Name: "min_characters_to_try", Kind: KindInt, Default: Int(50), Group: GroupRecognition, Description: "Specify minimum characters to try during OSD"},
	{Name: "unrecognised_char", Kind: KindString, Default: String("|"), Group: GroupRejection, Description: "Output char for unidentified blobs"},
	{Name: "suspect_level", Kind: KindInt, Default: Int(99), Group: GroupRejection, Description: "Suspect marker level"},
	{Name: "suspect_short_words", Kind: KindInt, Default: Int(2), Group: GroupRejection, Description: "Don't suspect dict wds longer than this"},
	{Name: "suspect_constrain_1Il", Kind: KindBool, Default: Bool(false), Group: GroupRejection, Description: "UNLV keep 1Il chars rejected"},
	{Name: "suspect_rating_per_ch", Kind: KindDouble, Default: Double(999.9), Group: GroupRejection, Description: "Don't touch bad rating limit"},
	{Name: "suspect_accept_rating", Kind: KindDouble, Default: Double(-999.9), Group: GroupRejection, Description: "Accept good rating limit"},
	{Name: "tessedit_minimal_rejection", Kind: KindBool, Default: Bool(false), Group: GroupRejection, Description: "Only reject tess failures"},
	{Name: "tessedit_zero_rejection", Kind: KindBool, Default: Bool(false), Group: GroupRejection, Description: "Don't reject ANYTHING"},
	{Name: "tessedit_word_for_word", Kind: KindBool, Default: Bool(false), Group: GroupRejection, Description: "Make output have exactly one word per WORD"},
	{Name: "tessedit_zero_kelvin_rejection", Kind: KindBool, Default: Bool(false), Group: GroupRejection, Description: "Don't reject ANYTHING AT ALL"},
	{Name: "tessedit_reject_mode", Kind: KindInt, Default: Int(0), Group: GroupRejection, Description: "Rejection algorithm"},
	{Name: "tessedit_rejection_debug", Kind: KindBool, Default: Bool(false), Group: GroupDebug, Description: "Adaption debug"},
	{Name: "tessedit_flip_0O", Kind: KindBool, Default: Bool(true), Group: GroupRejection, Description: "Contextual 0O O0 flips"},
	{Name: "tessedit_lower_flip_hyphen", Kind: KindDouble, Default: Double(1.5), Group: GroupRejection, Description: "Aspect ratio dot/hyphen test"},
	{Name: "tessedit_upper_flip_hyphen", Kind: KindDouble, Default: Double(1.8), Group: GroupRejection, Description: "Aspect ratio dot/hyphen test"},
	{Name: "rej_trust_doc_dawg", Kind: KindBool, Default: Bool(false), Group: GroupRejection, Description: "Use DOC dawg in 11l conf. detector"},
	{Name: "rej_1Il_use_dict_word", Kind: KindBool, Default: Bool(false), Group: GroupRejection, Description: "Use dictword test"},
	{Name: "rej_1Il_trust_permuter_type", Kind: KindBool, Default: Bool(true), Group: GroupRejection, Description: "Don't double check"},
	{Name: "rej_use_tess_accepted", Kind: KindBool, Default: Bool(true), Group: GroupRejection, Description: "Individual rejection control"},
	{Name: "rej_use_tess_blanks", Kind: KindBool, Default: Bool(true), Group: GroupRejection, Description: "Individual rejection control"},
	{Name: "rej_use_good_perm", Kind: KindBool, Default: Bool(true), Group: GroupRejection, Description: "Individual rejection control"},
	{Name: "rej_use_sensible_wd", Kind: KindBool, Default: Bool(false), Group: GroupRejection, Description: "Extend permuter check"},
	{Name: "rej_alphas_in_number_perm", Kind: KindBool, Default: Bool(false), Group: GroupRejection, Description: "Extend permuter check"},
	{Name: "rej_whole_of_mostly_reject_word_fract", Kind: KindDouble, Default: Double(0.85), Group: GroupRejection, Description: "if >this fract"},
	{Name: "tessedit_image_border", Kind: KindInt, Default: Int(2), Group: GroupSegmentation, Description: "Rej blbs near image edge limit"},
	{Name: "ok_repeated_ch_non_alphanum_wds", Kind: KindString, Default: String("-?*="), Group: GroupRejection, Description: "Allow NN to unrej"},
	{Name: "conflict_set_I_l_1", Kind: KindString, Default: String("Il1[]"), Group: GroupRejection, Description: "Il1[]\", \"Il1 conflict set"},
	{Name: "min_sane_x_ht_pixels", Kind: KindInt, Default: Int(8), Group: GroupSegmentation, Description: "Reject any x-ht lt or eq than this"},
	{Name: "tessedit_create_boxfile", Kind: KindBool, Default: Bool(false), Group: GroupTraining, Description: "Output text with boxes"},
	{Name: "tessedit_page_number", Kind: KindInt, Default: Int(-1), Group: GroupOutput, Description: "-1 -> All pages, else specific page to process"},
	{Name: "tessedit_write_images", Kind: KindBool, Default: Bool(false), Group: GroupDebug, Description: "Capture the image from the IPE"},
	{Name: "interactive_display_mode", Kind: KindBool, Default: Bool(false), Group: GroupDebug, Description: "Run interactively?"},
	{Name: "file_type", Kind: KindString, Default: String(".tif"), Group: GroupOutput, Description: "Filename extension"},
	{Name: "tessedit_override_permuter", Kind: KindBool, Default: Bool(true), Group: GroupRecognition, Description: "According to dict_word"},
	{Name: "tessedit_load_sublangs", Kind: KindString, Default: String(""), Group: GroupRecognition, Description: "List of languages to load with this one"},
	{Name: "tessedit_use_primary_params_model", Kind: KindBool, Default: Bool(false), Group: GroupRecognition, Description: "In multilingual mode use params model of the primary language"},
	{Name: "min_orientation_margin", Kind: KindDouble, Default: Double(7.0), Group: GroupSegmentation, Description: "Min acceptable orientation margin"},
	{Name: "textord_tabfind_show_vlines", Kind: KindBool, Default: Bool(false), Group: GroupDebug, Description: "Debug line finding"},
	{Name: "textord_use_cjk_fp_model", Kind: KindBool, Default: Bool(false), Group: GroupSegmentation, Description: "Use CJK fixed pitch model"},
	{Name: "poly_allow_detailed_fx", Kind: KindBool, Default: Bool(false), Group: GroupSegmentation, Description: "Allow feature extractors to see the original outline"},
	{Name: "tessedit_init_config_only", Kind: KindBool, Default: Bool(false), Group: GroupRecognition, Description: "Only initialize with the config file"},
	{Name: "textord_equation_detect", Kind: KindBool, Default: Bool(false), Group: GroupSegmentation, Description: "Turn on equation detector"},
	{Name: "textord_tabfind_vertical_text", Kind: KindBool, Default: Bool(true), Group: GroupSegmentation, Description: "Enable vertical detection"},
	{Name: "textord_tabfind_force_vertical_text", Kind: KindBool, Default: Bool(false), Group: GroupSegmentation, Description: "Force using vertical text page mode"},
	{Name: "textord_tabfind_vertical_text_ratio", Kind: KindDouble, Default: Double(0.5), Group: GroupSegmentation, Description: "Fraction of textlines deemed vertical to use vertical page mode"},
	{Name: "textord_tabfind_aligned_gap_fraction", Kind: KindDouble, Default: Double(0.75), Group: GroupSegmentation, Description: "Fraction of height used as a minimum gap for aligned blobs."},
	{Name: "tessedit_parallelize", Kind: KindInt, Default: Int(0), Group: GroupSegmentation, Description: "Run in parallel where possible"},
	{Name: "preserve_interword_spaces", Kind: KindBool, Default: Bool(false), Group: GroupOutput, Description: "Preserve multiple interword spaces"},
	{Name: "page_separator", Kind: KindString, Default: String("\f"), Group: GroupOutput, Description: "Page separator (default is form feed control character)"},
	{Name: "lstm_choice_mode", Kind: KindInt, Default: Int(0), Group: GroupRecognition, Description: "Allows to include alternative symbols choices in the hOCR output"},
	{Name: "lstm_choice_iterations", Kind: KindInt, Default: Int(5), Group: GroupRecognition, Description: "Sets the number of cascading iterations for the Beamsearch in lstm_choice_mode"},
	{Name: "lstm_rating_coefficient", Kind: KindDouble, Default: Double(5.0), Group: GroupRecognition, Description: "Sets the rating coefficient for the lstm choices"},
	{Name: "pageseg_apply_music_mask", Kind: KindBool, Default: Bool(false), Group: GroupSegmentation, Description: "Detect music staff and remove intersecting components"},
}
