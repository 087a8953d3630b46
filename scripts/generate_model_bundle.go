package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"feewatch/internal/ml"
)

// Generates a development model bundle with plausible coefficients so the
// service can run locally without exported training artifacts.
func main() {
	var (
		outPath = flag.String("out", "model_bundle.json", "Output path for the bundle")
		version = flag.String("version", "dev", "Bundle version tag")
	)
	flag.Parse()

	fmt.Printf("Generating model bundle...\n")
	fmt.Printf("  Version: %s\n", *version)
	fmt.Printf("  Output: %s\n", *outPath)

	bundle := ml.Bundle{
		Version: *version,
		Scaler: &ml.Scaler{
			// Feature order: Semester, Total_Fees, Fees_Paid, Due_Amount,
			// Delay_Days, Late_Payments_Count, Payment_Gap.
			Mean:  []float64{4.5, 350000, 280000, 70000, 12, 1.8, 18},
			Scale: []float64{2.3, 150000, 130000, 60000, 15, 2.1, 16},
		},
		Classifier: &ml.LinearClassifier{
			Coefficients: [][]float64{
				{0.05, 0.10, 0.20, -0.60, -0.90, -0.40, -0.30},
				{-0.02, 0.05, 0.45, -0.25, -0.10, -0.15, -0.05},
				{-0.03, -0.15, -0.65, 0.85, 1.00, 0.55, 0.35},
			},
			Intercepts: []float64{-0.2, 0.6, -0.4},
		},
		Encoder: &ml.LabelEncoder{Classes: []string{"Delayed", "Paid", "Unpaid"}},
	}

	data, err := json.MarshalIndent(&bundle, "", "  ")
	if err != nil {
		log.Fatalf("Failed to marshal bundle: %v", err)
	}
	if err := os.WriteFile(*outPath, data, 0o644); err != nil {
		log.Fatalf("Failed to write bundle: %v", err)
	}

	fmt.Printf("✓ Wrote %d bytes to %s\n", len(data), *outPath)
}
