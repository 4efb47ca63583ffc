package model

// AttachProvenance sets the provenance reference on results that can carry
// one. Callers invoke this after the pipeline completes; results of other
// modalities are left untouched.
func AttachProvenance(result AnalysisResult, p Provenance) {
	switch r := result.(type) {
	case *AudioAnalysis:
		r.Source = &p
	case *VideoAnalysis:
		r.Source = &p
	case *ImageAnalysis:
		r.Source = &p
	}
}
