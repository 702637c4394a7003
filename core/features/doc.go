// Package features derives numeric feature vectors from registry rows and
// fuel log windows. The vehicle-type codebook and the standard scaler live
// here so that training and inference share exactly one definition of both.
package features
